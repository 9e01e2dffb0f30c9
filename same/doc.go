// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package same reconstructs NOAA Specific Area Message Encoding (SAME)
// headers from up to three noisy copies received over a weather radio.
//
// It implements a bitwise confidence-weighted merge of the copies followed
// by a grammar-constrained substitution pass ("scrubbing") that exploits the
// rigid syntax of a SAME header to recover data lost to transmission noise.
//
// Reference: http://www.nws.noaa.gov/directives/sym/pd01017012curr.pdf
package same
