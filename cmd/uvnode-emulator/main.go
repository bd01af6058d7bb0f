// uvnode-emulator simulates a UV sensor node on a TCP port, for testing
// uvmon without hardware. It answers the calibration commands with OK and
// serves UV? queries with a diurnal UV curve plus noise.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

type nodeEmulator struct {
	peakUV   float64
	noise    float64
	fixedUV  float64
	useFixed bool
}

func main() {
	port := flag.Int("port", 9210, "TCP port to listen on")
	peakUV := flag.Float64("peak-uv", 8.0, "Peak UV index at solar noon")
	noise := flag.Float64("noise", 0.3, "Random noise amplitude added to each reading")
	fixedUV := flag.Float64("fixed-uv", -1, "Serve a fixed UV index instead of the diurnal curve (negative disables)")
	flag.Parse()

	e := &nodeEmulator{
		peakUV:   *peakUV,
		noise:    *noise,
		fixedUV:  *fixedUV,
		useFixed: *fixedUV >= 0,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("could not listen on port %d: %v", *port, err)
	}
	log.Printf("UV node emulator listening on port %d", *port)

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Println("shutting down")
		ln.Close()
		os.Exit(0)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept failed: %v", err)
			continue
		}
		log.Printf("client connected: %v", conn.RemoteAddr())
		go e.handleClient(conn)
	}
}

func (e *nodeEmulator) handleClient(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := strings.TrimSuffix(scanner.Text(), "\r")
		reply := e.handleCommand(cmd)
		if _, err := conn.Write([]byte(reply + "\r\n")); err != nil {
			log.Printf("write failed: %v", err)
			return
		}
	}
	log.Printf("client disconnected: %v", conn.RemoteAddr())
}

func (e *nodeEmulator) handleCommand(cmd string) string {
	switch {
	case cmd == "UV?":
		return fmt.Sprintf("UV:%.3f", e.currentUV())
	case strings.HasPrefix(cmd, "IT "),
		strings.HasPrefix(cmd, "RANGE "),
		strings.HasPrefix(cmd, "MODE "),
		strings.HasPrefix(cmd, "CAL "):
		log.Printf("accepted setup command: %s", cmd)
		return "OK"
	default:
		log.Printf("unknown command: %q", cmd)
		return "ERR"
	}
}

// currentUV follows a half-sine between 07:00 and 19:00 local time, zero at
// night, with a little noise on top.
func (e *nodeEmulator) currentUV() float64 {
	if e.useFixed {
		return e.fixedUV
	}

	now := time.Now()
	hour := float64(now.Hour()) + float64(now.Minute())/60.0

	const dawn, dusk = 7.0, 19.0
	if hour < dawn || hour > dusk {
		return 0
	}

	phase := (hour - dawn) / (dusk - dawn)
	uv := e.peakUV * math.Sin(phase*math.Pi)
	uv += (rand.Float64()*2 - 1) * e.noise
	if uv < 0 {
		uv = 0
	}
	return uv
}
