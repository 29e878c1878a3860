package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/getopt"
)

var (
	verboseLog        bool
	quietLog          bool
	serialDevice      string
	serialBaud        int
	civAddress        byte
	controllerAddress byte
	readTimeout       time.Duration
	watchInterval     time.Duration
	bandsFile         string
	forceTX           bool
	debugPackets      bool

	verb     string
	verbArgs []string
)

func parseArgs() {
	h := getopt.BoolLong("help", 'h', "display help")
	v := getopt.BoolLong("verbose", 'v', "Enable verbose (debug) logging")
	q := getopt.BoolLong("quiet", 'q', "Disable logging")
	p := getopt.StringLong("port", 'p', "", "Serial port device (e.g. /dev/ttyUSB0)")
	b := getopt.IntLong("baud", 'b', 19200, "Serial baud rate (300, 1200, 4800, 9600, 19200)")
	c := getopt.StringLong("civ-address", 'c', "0x88", "CI-V address for radio")
	ca := getopt.StringLong("controller-address", 'z', "0xe0", "Controller address")
	t := getopt.Uint16Long("timeout", 't', 1000, "Reply read timeout in milliseconds")
	i := getopt.Uint16Long("watch-interval", 'i', 1000, "Watch mode poll interval in milliseconds")
	bf := getopt.StringLong("bands", 'B', "", "TX band plan YAML file (overrides the built-in US table)")
	f := getopt.BoolLong("force-tx", 'f', "Allow TX outside the band plan")
	dp := getopt.BoolLong("debug-packets", 'D', "Show CI-V packets for debugging")

	getopt.Parse()
	args := getopt.Args()

	if *h || len(args) == 0 || (*q && *v) {
		fmt.Println(getAboutStr())
		getopt.Usage()
		fmt.Println("\nverbs: on off vfo mem bank chan freq setfreq mode setmode tx rx txstatus status watch ports")
		os.Exit(1)
	}

	verboseLog = *v
	quietLog = *q
	serialDevice = *p
	serialBaud = *b

	*c = strings.Replace(*c, "0x", "", -1)
	*c = strings.Replace(*c, "0X", "", -1)
	civAddressInt, err := strconv.ParseInt(*c, 16, 64)
	if err != nil {
		fmt.Println("invalid CI-V address: can't parse", *c)
		os.Exit(1)
	}
	civAddress = byte(civAddressInt)

	*ca = strings.Replace(*ca, "0x", "", -1)
	*ca = strings.Replace(*ca, "0X", "", -1)
	controllerAddressInt, err := strconv.ParseInt(*ca, 16, 64)
	if err != nil {
		fmt.Println("invalid CI-V address for controller: can't parse", *ca)
		os.Exit(1)
	}
	controllerAddress = byte(controllerAddressInt)

	readTimeout = time.Duration(*t) * time.Millisecond
	watchInterval = time.Duration(*i) * time.Millisecond
	bandsFile = *bf
	forceTX = *f
	debugPackets = *dp

	verb = args[0]
	verbArgs = args[1:]
}
