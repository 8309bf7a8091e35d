// Package demorun drives a queue end to end with synthetic producers and
// consumers. It is the in-process workload behind `laneq demo`.
package demorun
