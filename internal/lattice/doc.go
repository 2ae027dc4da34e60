// Package lattice partitions a point set into a regular, non-periodic 3-D
// grid of cells for neighbour-limited pair searches.
//
// Cells are stored in a flat slice of length nx*ny*nz with iz varying
// fastest:
//
//	index = ix*ny*nz + iy*nz + iz
//
// Each cell side is at least rmax/refine along its axis, so every pair
// closer than rmax lies within refine cells of each other on every axis.
// Neighbors enumerates that window, clipped to the lattice bounds.
//
// # Ownership
//
// Build returns an owned *Lattice. Its coordinate storage is reserved from
// a resource.Controller and handed back by Release. The consumer releases
// each lattice exactly once; a lattice used as both sides of an
// autocorrelation count is still a single lattice.
package lattice
