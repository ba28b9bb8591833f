// facectl is an interactive shell for driving the face panel. It speaks
// the panel's JSON line protocol over TCP, but lets you type short
// human commands instead of raw JSON:
//
//	face on | face off
//	mouth 0.4
//	love 0.8
//	blink
//	clear #FF66AA
//	bl on | bl off
//	tone 880 150
//	melody 523:120,659:120,784:240
//	stop
//	theme 2
//	wifi
//	image photo.jpg
//	raw {"cmd":"blink"}
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

func main() {
	addr := flag.String("addr", "192.168.4.1:8088", "panel TCP address")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, 5*time.Second)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *addr)

	// Print everything the panel sends: replies and unsolicited events
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Printf("< %s\n", scanner.Text())
		}
		fmt.Println("connection closed")
		os.Exit(0)
	}()

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		msg, payload, err := Translate(line)
		if err != nil {
			fmt.Printf("! %v\n", err)
			fmt.Print("> ")
			continue
		}

		if _, err := conn.Write(append([]byte(msg), '\n')); err != nil {
			log.Fatalf("write: %v", err)
		}
		if payload != nil {
			// Image payload: the panel replies "ready" first, then
			// expects the raw bytes
			time.Sleep(200 * time.Millisecond)
			if _, err := conn.Write(payload); err != nil {
				log.Fatalf("write payload: %v", err)
			}
		}
		fmt.Print("> ")
	}
}
