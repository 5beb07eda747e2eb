// Package datadir locates the folder the game saves microcontrollers in and
// lists the files found there.
package datadir
