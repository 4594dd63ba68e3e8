// Command alarm-panel runs the alarm controller on a Linux single-board
// computer: GPIO LEDs and button, PWM buzzers, an SSD1306 display and the
// two-route control page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sweeney/alarm-panel/internal/buzzer"
	"github.com/sweeney/alarm-panel/internal/config"
	"github.com/sweeney/alarm-panel/internal/console"
	"github.com/sweeney/alarm-panel/internal/control"
	"github.com/sweeney/alarm-panel/internal/display"
	"github.com/sweeney/alarm-panel/internal/gpio"
	"github.com/sweeney/alarm-panel/internal/httpd"
	"github.com/sweeney/alarm-panel/internal/logic"
	"github.com/sweeney/alarm-panel/internal/metrics"
	"github.com/sweeney/alarm-panel/internal/mqtt"
	"github.com/sweeney/alarm-panel/internal/panel"
	"github.com/sweeney/alarm-panel/internal/status"
	"github.com/sweeney/alarm-panel/internal/web"
)

func main() {
	printState := flag.Bool("print-state", false, "Print the confirmation button state and exit")
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printState bool) error {
	if cfg.Console.Device != "" {
		mirror, err := console.Open(cfg.Console.Device, cfg.Console.Baud)
		if err != nil {
			return err
		}
		defer mirror.Close()
		defer console.Attach(mirror)()
	}

	button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.Button)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	if printState {
		pressed, err := button.Pressed()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Printf("button: %s\n", pressedString(pressed))
		return nil
	}

	leds, err := gpio.NewRealLEDs(cfg.GPIO.Chip, cfg.GPIO.Red, cfg.GPIO.Green)
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer leds.Close()

	drv, err := buzzer.NewPeriphDriver()
	if err != nil {
		return fmt.Errorf("init buzzers: %w", err)
	}
	buzzers := buzzer.NewPair(drv, cfg.Buzzer.Hz, cfg.Buzzer.Pin1, cfg.Buzzer.Pin2)

	var sink display.Sink
	if cfg.Display.I2CBus != "off" {
		dev, err := display.OpenSSD1306(cfg.Display.I2CBus)
		if err != nil {
			return fmt.Errorf("init display: %w", err)
		}
		defer dev.Close()
		sink = dev
	}
	canvas := display.NewCanvas(sink)

	out := panel.NewOutputs(leds, buzzers, canvas)
	if err := out.DrawBanner(); err != nil {
		log.Printf("display: %v", err)
	}

	machine := logic.NewMachine(cfg.Mode(), out, button, time.Now, time.Sleep)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}
	stackCfg := httpd.DefaultStackConfig()
	stackCfg.IdleTimeout = cfg.IdleTimeout
	stack := httpd.NewListenerStack(ln, stackCfg)
	defer stack.Close()
	log.Printf("control page listening on %s", stack.Addr())

	var publisher mqtt.Publisher = mqtt.Discard{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		rp := mqtt.NewRealPublisher(mqtt.Options{Broker: cfg.Broker})
		publisher, mqttStatus = rp, rp
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		ArmMode:     cfg.Mode(),
		TickMs:      cfg.Tick.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		ListenAddr:  cfg.Listen,
		AdminAddr:   cfg.Admin,
	})
	if info := readNetworkInfo(); info != nil {
		tracker.SetNetwork(info)
	}

	ctrl := panel.NewController(panel.Config{
		Stack:    stack,
		Handler:  httpd.NewHandler(httpd.NewRouter(machine), m),
		Machine:  machine,
		Pattern:  logic.NewPattern(out, logic.ActivePhases),
		Pub:      publisher,
		Recorder: m,
		Tracker:  tracker,
	})
	if err := ctrl.Start(); err != nil {
		log.Printf("panel: reset outputs: %v", err)
	}

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.Admin != "" {
		srv := web.New(cfg.Admin, tracker, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("admin server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("admin server listening on %s", cfg.Admin)
	}

	if cfg.GPIO.Bootsel >= 0 {
		var rb control.Rebooter = control.LogRebooter{}
		if cfg.Reboot {
			rb = control.SystemRebooter{}
		}
		plane := control.NewPlane(rb, nil)
		w, err := gpio.WatchFalling(cfg.GPIO.Chip, cfg.GPIO.Bootsel, func() {
			plane.Trigger("bootloader button pressed")
		})
		if err != nil {
			log.Printf("bootloader button disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	log.Printf("started: arm-mode=%s tick=%v broker=%q heartbeat=%v", cfg.Mode(), cfg.Tick, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, mqttStatus, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *panel.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := ctrl.Shutdown(); err != nil {
				log.Printf("panel: reset outputs: %v", err)
			}
			reason := signalName(s)
			refreshConnection(tracker, mqttStatus)
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ctrl.Tick(t)
			refreshConnection(tracker, mqttStatus)

			if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t
			if info := readNetworkInfo(); info != nil {
				tracker.SetNetwork(info)
			}
			snap := tracker.Snapshot()
			log.Printf("heartbeat: state=%s arms=%d confirms=%d disarms=%d",
				snap.State, snap.Counts.Arms, snap.Counts.Confirms, snap.Counts.Disarms)
			hb := mqtt.SystemEvent{
				Timestamp:  t,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hb); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func refreshConnection(tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus) {
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType     = "NETWORK_TYPE"
	envNetworkIP       = "NETWORK_IP"
	envNetworkStatus   = "NETWORK_STATUS"
	envNetworkWifiSSID = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:   os.Getenv(envNetworkType),
		IP:     os.Getenv(envNetworkIP),
		Status: s,
		SSID:   os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
