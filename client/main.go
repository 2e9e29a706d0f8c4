package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/unoserver/network"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "", "your handle in the game")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	q := url.Values{"name": {*name}, "room": {*room}}
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: q.Encode()}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	conn := network.NewWSConnection(c)
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			packet, err := conn.ReadPacket()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			switch packet.MsgID {
			case network.MsgTypeHeartbeat:
			case network.MsgTypePrivate:
				fmt.Printf("[private] %s\n", packet.Data)
			default:
				fmt.Printf("%s\n", packet.Data)
			}
		}
	}()

	// stdin lines are sent as they are; "!" lines are commands, others chat.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := conn.Send(network.MsgTypeHeartbeat, nil); err != nil {
				log.Println("Heartbeat error:", err)
				return
			}
		case text, ok := <-lines:
			if !ok {
				return
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if err := conn.Send(network.MsgTypeCommand, []byte(text)); err != nil {
				log.Println("Write error:", err)
				return
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
