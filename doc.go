// Package devices contains the pluggable hardware context used by the si4707
// package to talk to a Silicon Labs Si4707 NOAA Weather Radio chip over I2C,
// plus the glue adapting github.com/kidoman/embd to that context.
package devices
