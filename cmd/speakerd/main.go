// speakerd is the desk companion's audio sidecar. It runs on the host
// next to the controller process and exposes a small HTTP API for playing
// clips and tones on the machine's speaker.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/ferretbit/tinygo-deskpet/pkg/player"
)

func main() {
	addr := flag.String("addr", ":8082", "listen address")
	flag.Parse()

	p := player.New()
	if err := p.Initialize(); err != nil {
		log.Fatalf("audio init: %v", err)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(p),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("speakerd listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
