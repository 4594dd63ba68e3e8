// Package config holds the panel settings: built-in defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/alarm-panel/internal/buzzer"
	"github.com/sweeney/alarm-panel/internal/gpio"
	"github.com/sweeney/alarm-panel/internal/logic"
)

type GPIOConfig struct {
	Chip    string `yaml:"chip"`
	Button  int    `yaml:"button"`
	Bootsel int    `yaml:"bootsel"`
	Red     int    `yaml:"red"`
	Green   int    `yaml:"green"`
}

type BuzzerConfig struct {
	Pin1 int `yaml:"pin1"`
	Pin2 int `yaml:"pin2"`
	Hz   int `yaml:"hz"`
}

type DisplayConfig struct {
	I2CBus string `yaml:"i2c_bus"` // "" picks the first bus, "off" disables
}

type ConsoleConfig struct {
	Device string `yaml:"device"` // e.g. /dev/ttyGS0, empty disables
	Baud   int    `yaml:"baud"`
}

type Config struct {
	ArmMode     string        `yaml:"arm_mode"`
	Listen      string        `yaml:"listen"`
	Admin       string        `yaml:"admin"`
	Tick        time.Duration `yaml:"tick"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Heartbeat   time.Duration `yaml:"heartbeat"`
	Broker      string        `yaml:"broker"`
	Reboot      bool          `yaml:"reboot_on_bootsel"`

	GPIO    GPIOConfig    `yaml:"gpio"`
	Buzzer  BuzzerConfig  `yaml:"buzzer"`
	Display DisplayConfig `yaml:"display"`
	Console ConsoleConfig `yaml:"console"`
}

// Defaults returns the settings used when nothing else is given.
func Defaults() *Config {
	return &Config{
		ArmMode:     string(logic.ArmBlocking),
		Listen:      ":80",
		Admin:       ":8080",
		Tick:        logic.ConfirmPollInterval,
		IdleTimeout: 30 * time.Second,
		Heartbeat:   15 * time.Minute,
		GPIO: GPIOConfig{
			Chip:    gpio.DefaultChip,
			Button:  gpio.DefaultPinButton,
			Bootsel: gpio.DefaultPinBootsel,
			Red:     gpio.DefaultPinRed,
			Green:   gpio.DefaultPinGreen,
		},
		Buzzer: BuzzerConfig{
			Pin1: buzzer.DefaultPin1,
			Pin2: buzzer.DefaultPin2,
			Hz:   buzzer.AlarmToneHz,
		},
		Console: ConsoleConfig{Baud: 115200},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse yaml %s: %w", path, err)
	}
	log.Printf("config: loaded %s", path)
	return nil
}

// Mode returns the validated arm mode.
func (c *Config) Mode() logic.ArmMode {
	m, _ := logic.ParseArmMode(c.ArmMode)
	return m
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := logic.ParseArmMode(c.ArmMode); !ok {
		errs = append(errs, fmt.Errorf("arm mode %q: want %q or %q", c.ArmMode, logic.ArmDeferred, logic.ArmBlocking))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("idle timeout must not be negative, got %v", c.IdleTimeout))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	if c.Buzzer.Hz <= 0 {
		errs = append(errs, fmt.Errorf("buzzer tone must be positive, got %d", c.Buzzer.Hz))
	}
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	return errors.Join(errs...)
}

// Parse registers the panel flags on fs and parses args. When -config is
// given the file is applied over the defaults and every flag set
// explicitly on the command line is applied again on top.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Defaults()
	path := fs.String("config", "", "YAML config file (flags override it)")

	fs.StringVar(&cfg.ArmMode, "arm-mode", cfg.ArmMode, `Arm confirmation: "deferred" (button polled by the main loop) or "blocking" (wait inside the request)`)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "Control page listen address")
	fs.StringVar(&cfg.Admin, "admin", cfg.Admin, "Admin status/metrics address (empty to disable)")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Main loop interval")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "Close silent control connections after this long (0 = never)")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address (empty to disable)")
	fs.BoolVar(&cfg.Reboot, "reboot-on-bootsel", cfg.Reboot, "Reboot the host when the bootloader button is pressed")
	fs.StringVar(&cfg.GPIO.Chip, "gpio-chip", cfg.GPIO.Chip, "GPIO chip name")
	fs.IntVar(&cfg.GPIO.Button, "pin-button", cfg.GPIO.Button, "Confirmation button line")
	fs.IntVar(&cfg.GPIO.Bootsel, "pin-bootsel", cfg.GPIO.Bootsel, "Bootloader button line (-1 to disable)")
	fs.IntVar(&cfg.GPIO.Red, "pin-red", cfg.GPIO.Red, "Red LED line")
	fs.IntVar(&cfg.GPIO.Green, "pin-green", cfg.GPIO.Green, "Green LED line")
	fs.IntVar(&cfg.Buzzer.Pin1, "pin-buzzer1", cfg.Buzzer.Pin1, "First buzzer pin")
	fs.IntVar(&cfg.Buzzer.Pin2, "pin-buzzer2", cfg.Buzzer.Pin2, "Second buzzer pin")
	fs.IntVar(&cfg.Buzzer.Hz, "tone", cfg.Buzzer.Hz, "Buzzer tone in Hz")
	fs.StringVar(&cfg.Display.I2CBus, "i2c-bus", cfg.Display.I2CBus, `Display I2C bus ("off" to disable)`)
	fs.StringVar(&cfg.Console.Device, "console", cfg.Console.Device, "Serial device mirroring the log (empty to disable)")
	fs.IntVar(&cfg.Console.Baud, "console-baud", cfg.Console.Baud, "Serial console baud rate")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *path != "" {
		// Flag values are bound to cfg, so capture the explicit ones before
		// the file overwrites them.
		explicit := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if err := cfg.loadFile(*path); err != nil {
			return nil, err
		}
		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return nil, fmt.Errorf("flag -%s: %w", name, err)
			}
		}
	}
	return cfg, cfg.Validate()
}
