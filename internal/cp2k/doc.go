// Package cp2k reads, mutates and writes CP2K input files, and extracts the
// few values the dielectric workflow needs from CP2K output: the dipole
// moment recorded by &PRINT &MOMENTS and the simulation cell logged at
// startup.
package cp2k
