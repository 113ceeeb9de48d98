// Package lic computes Line Integral Convolution images.
//
// For every output pixel a short streamline is traced forward and backward
// through a vector field with unit Euler steps, and a noise field is averaged
// along it. Pixels whose streamline cannot be traced (a zero seed vector) come
// out fully transparent.
//
// A Kernel holds only read-only state, so one Kernel can serve any number of
// goroutines working on disjoint tiles of the same destination buffer.
package lic
