// Package sim provides the flocking workload used by the benchmarks and the
// terminal host.
//
// Each Step loads every agent into a spatialgo.Space, issues one radius
// query per agent through ForEachNeighbor and applies the three classic
// steering rules (separation, alignment, cohesion) before moving agents and
// reflecting them off the world edges.
package sim
