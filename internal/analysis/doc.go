// Package analysis measures orbital periods from sampled runs, both from the
// apsides of the distance series and from its power spectrum.
package analysis
