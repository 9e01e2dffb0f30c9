// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/chip"
	devices "github.com/ke4roh/si4707nwr"
	"github.com/ke4roh/si4707nwr/same"
	"github.com/ke4roh/si4707nwr/si4707"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "nwrmonitor.toml", "path to config file")
	flag.Parse()

	config := &Config{}
	raw, err := ioutil.ReadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read config file: %s\n", err)
		os.Exit(1)
	}
	if err := toml.Unmarshal(raw, config); err != nil {
		fmt.Fprintf(os.Stderr, "cannot parse config file: %s\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	if config.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	var publisher *mq
	if config.Mqtt.Host != "" {
		publisher, err = newMQ(config.Mqtt)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
	}

	if err := embd.InitGPIO(); err != nil {
		log.WithError(err).Fatal("failed to init GPIO")
	}
	if err := embd.InitI2C(); err != nil {
		log.WithError(err).Fatal("failed to init I2C")
	}

	hw, err := devices.NewI2CContext(devices.I2COpts{
		Bus:      config.Radio.I2CBus,
		ResetPin: config.Radio.ResetPin,
		IntrPin:  config.Radio.IntrPin,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open Si4707")
	}

	driver := si4707.New(hw, log)
	ctx := context.Background()
	if err := driver.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start driver")
	}
	defer driver.Shutdown(false)

	driver.RegisterEventListener(func(e si4707.Event) {
		handleEvent(log, publisher, config, e)
	})

	if err := driver.PowerOn(nil, nil); err != nil {
		log.WithError(err).Fatal("failed to power on radio")
	}
	if config.Radio.Volume > 0 {
		if err := driver.SetVolume(config.Radio.Volume); err != nil {
			log.WithError(err).Warn("failed to set volume")
		}
	}
	if _, err := driver.Tune(config.Radio.Transmitter); err != nil {
		log.WithError(err).Fatal("failed to tune")
	}

	log.Info("nwrmonitor ready")
	for {
		time.Sleep(time.Hour)
	}
}

func handleEvent(log logrus.FieldLogger, publisher *mq, config *Config, e si4707.Event) {
	switch ev := e.(type) {
	case si4707.SAMEMessageReceivedEvent:
		handleMessage(log, publisher, config, ev.Message)
	case si4707.CommandExceptionEvent:
		log.WithError(ev.Err).Warn("command failed")
	case si4707.RadioPowerEvent:
		log.WithField("on", ev.PowerOn).Debug("radio power changed")
	}
}

func handleMessage(log logrus.FieldLogger, publisher *mq, config *Config, msg *same.Message) {
	if len(config.FIPS) > 0 {
		applies := false
		for _, fips := range config.FIPS {
			ok, err := msg.AppliesToFIPS(fips)
			if err == nil && ok {
				applies = true
				break
			}
		}
		if !applies {
			return
		}
	}

	event := msg.GetEventType()
	log.WithFields(logrus.Fields{
		"event":      event,
		"priority":   same.EventPriority(event),
		"originator": msg.GetOriginator(),
	}).Info("SAME message received")

	if publisher == nil {
		return
	}

	dur, _ := msg.GetDurationSec()
	start, _ := msg.GetStartTimeSec()
	counties, _ := msg.GetCounties()

	publisher.PublishJSON("alert", map[string]interface{}{
		"text":      msg.String(),
		"event":     event,
		"counties":  counties,
		"duration":  dur,
		"startTime": start.Unix(),
		"id":        msg.EventID(),
	})
	publisher.PublishFields("alert/fields", []int{dur, int(start.Unix())})
}
