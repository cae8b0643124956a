// Command loadtest opens many UI connections to a running bridge and counts
// the state frames each one receives.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	addr   = flag.String("addr", "127.0.0.1:8080", "bridge address")
	nConns = flag.Int("conns", 100, "number of websocket connections")
	report = flag.Duration("report", 5*time.Second, "report interval")
)

func main() {
	flag.Parse()

	token := os.Getenv("SESSION_ACCESS_TOKEN")
	if token == "" {
		log.Fatal("SESSION_ACCESS_TOKEN is not set")
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "access_token=" + url.QueryEscape(token)}

	var frames atomic.Int64
	var conns []*websocket.Conn
	for i := 0; i < *nConns; i++ {
		c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			log.Fatalf("Failed to connect %d: %v", i, err)
		}
		go func(conn *websocket.Conn) {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					log.Fatal(err)
				}
				frames.Add(1)
			}
		}(c)

		draft := fmt.Sprintf(`{"type":"set_draft","text":"conn %d"}`, i)
		if err := c.WriteMessage(websocket.TextMessage, []byte(draft)); err != nil {
			log.Fatalf("Failed to write %d: %v", i, err)
		}
		conns = append(conns, c)
	}

	log.Printf("all %d connections established", len(conns))
	for range time.Tick(*report) {
		log.Printf("frames received: %d", frames.Load())
	}
}
