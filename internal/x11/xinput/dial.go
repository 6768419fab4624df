package xinput

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
)

// eventBuffer bounds how many XGE events may wait for the backend before
// new ones are dropped.
const eventBuffer = 256

// Dial opens a connection to display (or $DISPLAY) dedicated to XInput
// traffic. XI2 device events selected through it arrive on Events instead of
// through xgb.
func Dial(display string) (*Conn, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	addr, err := parseDisplay(display)
	if err != nil {
		return nil, err
	}

	sock, err := net.Dial(addr.network, addr.address)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", display, err)
	}

	auth, err := readAuthority(authorityPath(), addr.host, addr.number)
	if err != nil {
		// Servers without access control accept an empty setup request.
		auth = nil
	}

	events := make(chan GenericEvent, eventBuffer)
	filter := newEventFilter(sock, auth, events)
	c, err := xgb.NewConnNet(filter)
	if err != nil {
		sock.Close()
		return nil, fmt.Errorf("x connection setup on %s: %w", display, err)
	}

	x, err := Init(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	x.filter = filter
	x.events = events
	return x, nil
}

type displayAddr struct {
	network string
	address string
	host    string
	number  string
	screen  int
}

// parseDisplay understands the same display strings xgb does:
//
//	":1"                -> unix /tmp/.X11-unix/X1
//	"/tmp/launch-12/:0" -> unix /tmp/launch-12/:0
//	"hostname:2.1"      -> tcp hostname:6002
//	"tcp/hostname:1.0"  -> tcp hostname:6001
func parseDisplay(display string) (displayAddr, error) {
	var a displayAddr
	if display == "" {
		return a, errors.New("empty display string")
	}
	colon := strings.LastIndex(display, ":")
	if colon < 0 {
		return a, fmt.Errorf("bad display string: %s", display)
	}

	var protocol, socket string
	if display[0] == '/' {
		socket = display[:colon]
	} else if slash := strings.LastIndex(display, "/"); slash >= 0 {
		protocol = display[:slash]
		a.host = display[slash+1 : colon]
	} else {
		a.host = display[:colon]
	}

	rest := display[colon+1:]
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		screen, err := strconv.Atoi(rest[dot+1:])
		if err != nil {
			return a, fmt.Errorf("bad display string: %s", display)
		}
		a.screen = screen
		rest = rest[:dot]
	}
	num, err := strconv.Atoi(rest)
	if err != nil || num < 0 {
		return a, fmt.Errorf("bad display string: %s", display)
	}
	a.number = rest

	switch {
	case socket != "":
		a.network, a.address = "unix", socket+":"+rest
	case a.host != "" && a.host != "unix":
		if protocol == "" {
			protocol = "tcp"
		}
		a.network, a.address = protocol, net.JoinHostPort(a.host, strconv.Itoa(6000+num))
	default:
		a.host = ""
		a.network, a.address = "unix", "/tmp/.X11-unix/X"+rest
	}
	return a, nil
}

// authEntry is one Xauthority record.
type authEntry struct {
	Name string
	Data []byte
}

const (
	familyLocal = 256
	familyWild  = 65535
)

func authorityPath() string {
	if p := os.Getenv("XAUTHORITY"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".Xauthority")
}

// readAuthority returns the first MIT-MAGIC-COOKIE-1 entry in the
// Xauthority file at path matching host and display number.
func readAuthority(path, host, display string) (*authEntry, error) {
	if path == "" {
		return nil, errors.New("no Xauthority file")
	}
	if host == "" || host == "localhost" {
		h, err := os.Hostname()
		if err != nil {
			return nil, err
		}
		host = h
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for {
		var family uint16
		if err := binary.Read(f, binary.BigEndian, &family); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("no Xauthority entry for %s:%s", host, display)
			}
			return nil, err
		}
		fields := make([][]byte, 4)
		for i := range fields {
			if fields[i], err = readCounted(f); err != nil {
				return nil, err
			}
		}
		addr, disp, name, data := string(fields[0]), string(fields[1]), string(fields[2]), fields[3]

		addrMatch := family == familyWild || (family == familyLocal && addr == host)
		dispMatch := disp == "" || disp == display
		if addrMatch && dispMatch && name == "MIT-MAGIC-COOKIE-1" {
			return &authEntry{Name: name, Data: data}, nil
		}
	}
}

func readCounted(r io.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
