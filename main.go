package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

const appName = "ic7100ctl"

var version = "0.0.0"
var gitCommit = ""

func getAboutStr() string {
	s := appName + " " + version
	if gitCommit != "" {
		s += "-" + gitCommit
	}
	return s + " - Icom IC-7100 CI-V serial control"
}

// one operand, required
func operand(what string) (string, error) {
	if len(verbArgs) != 1 {
		return "", fmt.Errorf("%w: %v needs exactly one argument: %v", errUnsupportedValue, verb, what)
	}
	return verbArgs[0], nil
}

func noOperands() error {
	if len(verbArgs) != 0 {
		return fmt.Errorf("%w: %v takes no arguments", errUnsupportedValue, verb)
	}
	return nil
}

// frequencies are given on the command line in MHz, decimals allowed
func parseFreqMHz(s string) (uint, error) {
	mhz, err := strconv.ParseFloat(s, 64)
	if err != nil || mhz <= 0 {
		return 0, fmt.Errorf("%w: invalid frequency %v (expected MHz, e.g. 146.520)", errUnsupportedValue, s)
	}
	return uint(math.Round(mhz * 1e6)), nil
}

func printFreq(hz uint) {
	fmt.Printf("%.6f MHz", float64(hz)/1e6)
	if label := bandLabel(hz); label != "" {
		fmt.Print(" [", label, "]")
	}
	fmt.Println()
}

// the tx verb checks the tuned frequency against the band plan before keying
// up, --force-tx skips the check. The guard lives here, setPTT itself stays a
// plain protocol method.
func guardedTX() error {
	if !forceTX {
		f, err := civControl.getFreq()
		if err != nil {
			return err
		}
		if !txAllowed(f) {
			return fmt.Errorf("%w: %.6f MHz is outside the TX band plan (use --force-tx to override)",
				errUnsupportedValue, float64(f)/1e6)
		}
	}
	return civControl.setPTT(true)
}

// one poll round: frequency, mode, transmit status
func pollOnce() error {
	if _, err := civControl.getFreq(); err != nil {
		return err
	}
	if _, _, err := civControl.getMode(); err != nil {
		return err
	}
	if _, err := civControl.getTransmitStatus(); err != nil {
		return err
	}
	return nil
}

func runStatus() error {
	f, err := civControl.getFreq()
	if err != nil {
		return err
	}
	mode, filter, err := civControl.getMode()
	if err != nil {
		return err
	}
	ptt, err := civControl.getTransmitStatus()
	if err != nil {
		return err
	}
	printFreq(f)
	fmt.Println(mode, filter)
	if ptt {
		fmt.Println("TX")
	} else {
		fmt.Println("RX")
	}
	return nil
}

// watch polls the radio from this goroutine until interrupted, the display
// goroutine only renders. Transient poll errors show up in the status lines,
// transport loss ends the watch.
func runWatch() error {
	statusLog.startPeriodicPrint()
	defer statusLog.stopPeriodicPrint()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		if err := pollOnce(); err != nil {
			if errors.Is(err, errTransportUnavailable) {
				return err
			}
			log.Debug("poll: ", err)
		}
		select {
		case <-interrupt:
			return nil
		case <-ticker.C:
		}
	}
}

func runVerb() error {
	switch verb {
	case "on":
		if err := noOperands(); err != nil {
			return err
		}
		return civControl.setPower(true)
	case "off":
		if err := noOperands(); err != nil {
			return err
		}
		return civControl.setPower(false)
	case "vfo":
		v, err := operand("A or B")
		if err != nil {
			return err
		}
		return civControl.setVFO(v)
	case "mem":
		if err := noOperands(); err != nil {
			return err
		}
		return civControl.selectMemory()
	case "bank":
		v, err := operand("bank A-E")
		if err != nil {
			return err
		}
		return civControl.selectMemBank(v)
	case "chan":
		v, err := operand("channel name or number")
		if err != nil {
			return err
		}
		return civControl.selectMemChannel(v)
	case "freq":
		if err := noOperands(); err != nil {
			return err
		}
		f, err := civControl.getFreq()
		if err != nil {
			return err
		}
		printFreq(f)
		return nil
	case "setfreq":
		v, err := operand("frequency in MHz")
		if err != nil {
			return err
		}
		hz, err := parseFreqMHz(v)
		if err != nil {
			return err
		}
		return civControl.setFreq(hz)
	case "mode":
		if err := noOperands(); err != nil {
			return err
		}
		mode, filter, err := civControl.getMode()
		if err != nil {
			return err
		}
		fmt.Println(mode, filter)
		return nil
	case "setmode":
		v, err := operand("mode name")
		if err != nil {
			return err
		}
		return civControl.setMode(v)
	case "tx":
		if err := noOperands(); err != nil {
			return err
		}
		return guardedTX()
	case "rx":
		if err := noOperands(); err != nil {
			return err
		}
		return civControl.setPTT(false)
	case "txstatus":
		if err := noOperands(); err != nil {
			return err
		}
		ptt, err := civControl.getTransmitStatus()
		if err != nil {
			return err
		}
		if ptt {
			fmt.Println("TX")
		} else {
			fmt.Println("RX")
		}
		return nil
	case "status":
		if err := noOperands(); err != nil {
			return err
		}
		return runStatus()
	case "watch":
		if err := noOperands(); err != nil {
			return err
		}
		return runWatch()
	default:
		return fmt.Errorf("%w: unknown verb %q", errUnsupportedValue, verb)
	}
}

func main() {
	parseArgs()
	log.Init()
	log.Debug(getAboutStr())

	if bandsFile != "" {
		if err := loadBandPlan(bandsFile); err != nil {
			log.Fatal(err)
		}
	}

	if verb == "ports" {
		ports, err := listSerialPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if serialDevice == "" {
		log.Fatal("no serial port given (use -p)")
	}

	civControl.readTimeout = readTimeout
	if err := civControl.connect(serialDevice, serialBaud); err != nil {
		log.Fatal(err)
	}
	defer civControl.disconnect()

	if err := runVerb(); err != nil {
		civControl.disconnect()
		log.Fatal(err)
	}
}
