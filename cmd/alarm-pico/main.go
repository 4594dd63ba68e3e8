//go:build rp2040 || rp2350

// Command alarm-pico runs the alarm controller on a Raspberry Pi Pico W.
//
// Network credentials are compiled in:
//
//	tinygo flash -target=pico-w -ldflags="-X main.ssid=home -X main.password=secret" ./cmd/alarm-pico
package main

import (
	"log"
	"log/slog"
	"machine"
	"sync/atomic"
	"time"

	"github.com/soypat/cyw43439"

	"github.com/sweeney/alarm-panel/internal/buzzer"
	"github.com/sweeney/alarm-panel/internal/control"
	"github.com/sweeney/alarm-panel/internal/display"
	"github.com/sweeney/alarm-panel/internal/httpd"
	"github.com/sweeney/alarm-panel/internal/logic"
	"github.com/sweeney/alarm-panel/internal/panel"
	"github.com/sweeney/alarm-panel/internal/pico"
)

var (
	ssid     string
	password string
	hostname = "alarm-panel"
	staticIP string
	armMode  = string(logic.ArmBlocking)
)

const (
	pinButton  = machine.GP5
	pinBootsel = machine.GP6
	pinGreen   = machine.GP11
	pinRed     = machine.GP13
	pinSDA     = machine.GP14
	pinSCL     = machine.GP15

	httpPort = 80
	tick     = 10 * time.Millisecond
)

func main() {
	time.Sleep(2 * time.Second)
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: slog.LevelInfo}))

	button := pico.NewButton(pinButton)
	leds := pico.NewLEDs(pinRed, pinGreen)
	buzzers := buzzer.NewPair(pico.NewPWMDriver(), buzzer.AlarmToneHz, buzzer.DefaultPin1, buzzer.DefaultPin2)

	var sink display.Sink
	if oled, err := pico.OpenOLED(machine.I2C1, pinSDA, pinSCL); err != nil {
		log.Printf("display: %v", err)
	} else {
		sink = oled
	}
	out := panel.NewOutputs(leds, buzzers, display.NewCanvas(sink))
	if err := out.DrawBanner(); err != nil {
		log.Printf("display: %v", err)
	}

	watchBootsel(control.NewPlane(control.SystemRebooter{}, func() { buzzers.Set(false) }))

	network, err := pico.Connect(cyw43439.NewPicoWDevice(), pico.WifiConfig{
		SSID:     ssid,
		Password: password,
		Hostname: hostname,
		StaticIP: staticIP,
		Logger:   logger,
	})
	if err != nil {
		halt(leds, "wifi: %v", err)
	}
	log.Printf("device ip: %s (dhcp=%v)", network.Addr, network.DHCP)

	ln, err := pico.Listen(network.Stack, httpPort)
	if err != nil {
		halt(leds, "%v", err)
	}
	stack := httpd.NewListenerStack(ln, httpd.StackConfig{
		SegmentSize:  httpd.RequestBufferSize,
		IdleTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Second,
		QueueSize:    8,
	})
	log.Printf("control page listening on port %d", httpPort)

	mode, ok := logic.ParseArmMode(armMode)
	if !ok {
		mode = logic.ArmBlocking
	}
	alarm := logic.NewMachine(mode, out, button, time.Now, time.Sleep)

	ctrl := panel.NewController(panel.Config{
		Stack:   stack,
		Handler: httpd.NewHandler(httpd.NewRouter(alarm), nil),
		Machine: alarm,
		Pattern: logic.NewPattern(out, logic.ActivePhases),
	})
	if err := ctrl.Start(); err != nil {
		log.Printf("panel: reset outputs: %v", err)
	}
	log.Printf("started: arm-mode=%s", mode)

	for {
		ctrl.Tick(time.Now())
		time.Sleep(tick)
	}
}

// watchBootsel arms the bootloader button. The interrupt handler only sets
// a flag; the reboot runs on its own goroutine.
func watchBootsel(plane *control.Plane) {
	var pressed atomic.Bool
	if err := pico.OnFalling(pinBootsel, func() { pressed.Store(true) }); err != nil {
		log.Printf("bootloader button disabled: %v", err)
		return
	}
	go func() {
		for !pressed.Load() {
			time.Sleep(20 * time.Millisecond)
		}
		plane.Trigger("bootloader button pressed")
	}()
}

// halt leaves the red LED on and parks main. The bootloader button keeps working.
func halt(leds *pico.LEDs, format string, args ...any) {
	log.Printf("fatal: "+format, args...)
	leds.Set(true, false)
	select {}
}
