// Package baseflow separates streamflow into baseflow and quickflow using
// recursive digital filters and graphical interval methods, and calibrates
// each filter's free parameter against the observed series.
//
// Every filter enforces baseflow[i] <= flow[i] at each step by clipping, and
// reports how many steps required clipping as an explicit exceedance count.
package baseflow
