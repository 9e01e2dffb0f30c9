// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

// Config is the top-level nwrmonitor.toml configuration.
type Config struct {
	Debug bool
	Radio RadioConfig
	Mqtt  MqttConfig
	FIPS  []string // county codes to filter alerts for; empty means all
}

// RadioConfig configures the I2C bus and GPIO pins the Si4707 is wired to.
type RadioConfig struct {
	I2CBus      int    `toml:"i2c_bus"`
	ResetPin    string `toml:"reset_pin"`
	IntrPin     string `toml:"intr_pin"`
	Transmitter string // call sign, e.g. "WXL58"
	Volume      uint16
}

// MqttConfig configures the optional MQTT republish of decoded messages.
type MqttConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Topic    string // topic prefix, e.g. "nwr"
}
