// Package commands implements the rrsgen command line: building random
// reference set replicates from the input files and inspecting the grouping
// they are drawn from.
package commands
