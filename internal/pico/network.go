//go:build rp2040 || rp2350

// Package pico wires the panel to a Raspberry Pi Pico W: CYW43439 Wi-Fi,
// the seqs TCP/IP stack and the RP2040 pins.
package pico

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/seqs/eth/dhcp"
	"github.com/soypat/seqs/stacks"
)

const mtu = cyw43439.MTU

// Network bring-up defaults.
const (
	DefaultJoinAttempts = 5
	DefaultJoinTimeout  = 20 * time.Second
	dhcpPollInterval    = 500 * time.Millisecond
	dhcpMaxPolls        = 16
)

// WifiConfig describes how to join the network.
type WifiConfig struct {
	SSID     string
	Password string
	Hostname string
	// StaticIP is requested from DHCP and used as a fallback when no
	// DHCP server answers. Empty means DHCP only.
	StaticIP string
	// TCPPorts is the number of listening ports the stack can open.
	TCPPorts     int
	JoinAttempts int
	// JoinTimeout bounds the whole join, retries included.
	JoinTimeout time.Duration
	Logger      *slog.Logger
}

// Network is a joined Wi-Fi interface with an address.
type Network struct {
	Stack *stacks.PortStack
	Addr  netip.Addr
	MAC   net.HardwareAddr
	// DHCP is false when the static fallback address is in use.
	DHCP bool
}

// Connect initialises the radio, joins cfg.SSID and obtains an address.
// The packet pump keeps running in the background after it returns.
func Connect(dev *cyw43439.Device, cfg WifiConfig) (*Network, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.JoinAttempts <= 0 {
		cfg.JoinAttempts = DefaultJoinAttempts
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultJoinTimeout
	}
	if cfg.TCPPorts <= 0 {
		cfg.TCPPorts = 1
	}

	var reqAddr netip.Addr
	if cfg.StaticIP != "" {
		a, err := netip.ParseAddr(cfg.StaticIP)
		if err != nil {
			return nil, fmt.Errorf("static ip: %w", err)
		}
		reqAddr = a
	}

	wificfg := cyw43439.DefaultWifiConfig()
	start := time.Now()
	if err := dev.Init(wificfg); err != nil {
		return nil, fmt.Errorf("init wifi: %w", err)
	}
	logger.Info("wifi: init", slog.Duration("duration", time.Since(start)))

	if err := join(dev, cfg, logger); err != nil {
		return nil, err
	}
	mac, _ := dev.HardwareAddr6()
	logger.Info("wifi: joined", slog.String("ssid", cfg.SSID), slog.String("mac", net.HardwareAddr(mac[:]).String()))

	stack := stacks.NewPortStack(stacks.PortStackConfig{
		MAC:             mac,
		MaxOpenPortsUDP: 1,
		MaxOpenPortsTCP: cfg.TCPPorts,
		MTU:             mtu,
		Logger:          logger,
	})
	dev.RecvEthHandle(stack.RecvEth)
	go nicLoop(dev, stack)

	n := &Network{Stack: stack, MAC: net.HardwareAddr(mac[:])}

	client := stacks.NewDHCPClient(stack, dhcp.DefaultClientPort)
	err := client.BeginRequest(stacks.DHCPRequestConfig{
		RequestedAddr: reqAddr,
		Xid:           uint32(time.Now().Nanosecond()),
		Hostname:      cfg.Hostname,
	})
	if err != nil {
		return nil, fmt.Errorf("dhcp request: %w", err)
	}
	for i := 0; client.State() != dhcp.StateBound; i++ {
		if i >= dhcpMaxPolls {
			if !reqAddr.IsValid() {
				return nil, errors.New("dhcp: no lease and no static ip")
			}
			logger.Warn("dhcp: no lease, using static ip", slog.String("ip", reqAddr.String()))
			stack.SetAddr(reqAddr)
			n.Addr = reqAddr
			return n, nil
		}
		time.Sleep(dhcpPollInterval)
	}

	n.Addr = client.Offer()
	n.DHCP = true
	logger.Info("dhcp: bound",
		slog.String("ip", n.Addr.String()),
		slog.String("gateway", client.Gateway().String()),
		slog.Duration("lease", client.IPLeaseTime()),
	)
	stack.SetAddr(n.Addr)
	return n, nil
}

func join(dev *cyw43439.Device, cfg WifiConfig, logger *slog.Logger) error {
	deadline := time.Now().Add(cfg.JoinTimeout)
	var err error
	for attempt := 1; attempt <= cfg.JoinAttempts; attempt++ {
		err = dev.JoinWPA2(cfg.SSID, cfg.Password)
		if err == nil {
			return nil
		}
		logger.Error("wifi: join failed", slog.Int("attempt", attempt), slog.String("err", err.Error()))
		if time.Now().Add(time.Second).After(deadline) {
			break
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("join %q: %w", cfg.SSID, err)
}

// Listen opens a TCP listener on port over the stack.
func Listen(stack *stacks.PortStack, port uint16) (net.Listener, error) {
	ln, err := stacks.NewTCPListener(stack, stacks.TCPListenerConfig{
		MaxConnections: 3,
		ConnTxBufSize:  1024,
		ConnRxBufSize:  2048,
	})
	if err != nil {
		return nil, fmt.Errorf("tcp listener: %w", err)
	}
	if err := ln.StartListening(port); err != nil {
		return nil, fmt.Errorf("listen :%d: %w", port, err)
	}
	return ln, nil
}

// nicLoop pumps frames between the radio and the stack.
func nicLoop(dev *cyw43439.Device, stack *stacks.PortStack) {
	const (
		queueSize  = 3
		maxRetries = 3
	)
	var queue [queueSize][mtu]byte
	var lens [queueSize]int
	var retries [queueSize]int

	for {
		stallRx := true
		got, err := dev.PollOne()
		if err != nil {
			println("nic: poll:", err.Error())
		}
		if got {
			stallRx = false
		}

		for i := range queue {
			if retries[i] != 0 {
				continue
			}
			n, err := stack.HandleEth(queue[i][:])
			if err != nil {
				println("nic: stack:", err.Error())
				n = 0
			}
			lens[i] = n
			if n == 0 {
				break
			}
		}
		if lens == [queueSize]int{} {
			if stallRx {
				time.Sleep(51 * time.Millisecond)
			}
			continue
		}

		for i := range queue {
			n := lens[i]
			if n <= 0 {
				continue
			}
			if err := dev.SendEth(queue[i][:n]); err != nil {
				retries[i]++
				if retries[i] <= maxRetries {
					continue
				}
				println("nic: dropped frame:", err.Error())
			}
			lens[i] = 0
			retries[i] = 0
		}
	}
}
