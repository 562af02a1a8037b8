package simlink

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/battle-director/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Client is the websocket session to the external battle simulator
// Inbound messages are newline-separated protocol chunks handed to the
// sequencer; outbound messages relay the player's choices. The link is
// push-based: the simulator speaks when it has something to say
type Client struct {
	url        string
	log        *log.Logger
	onCommands func(lines []string)

	conn    *websocket.Conn
	sendCh  chan string
	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewClient creates a client delivering command batches to onCommands
func NewClient(url string, onCommands func(lines []string), logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:        url,
		log:        logger,
		onCommands: onCommands,
		sendCh:     make(chan string, sendBuffer),
		closeCh:    make(chan struct{}),
	}
}

// Name implements service.Service
func (c *Client) Name() string { return "simlink" }

// Init implements service.Service
func (c *Client) Init(args ...any) error { return nil }

// Start dials the simulator and launches the read and write pumps
func (c *Client) Start() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("simlink dial %s: %w", c.url, err)
	}
	c.conn = conn

	c.wg.Add(2)
	core.Go(c.readPump)
	core.Go(c.writePump)
	return nil
}

// Stop closes the session, idempotent
func (c *Client) Stop() error {
	c.once.Do(func() {
		close(c.closeCh)
		if c.conn != nil {
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
			_ = c.conn.Close()
		}
	})
	c.wg.Wait()
	return nil
}

// SendChoice relays a player decision, e.g. "move 1" or "switch 2"
// Drops with a log line when the send queue is full rather than
// blocking the caller
func (c *Client) SendChoice(choice string) {
	select {
	case c.sendCh <- "/choose " + choice:
	default:
		c.log.Printf("simlink: send queue full, dropping choice %q", choice)
	}
}

func (c *Client) readPump() {
	defer c.wg.Done()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closeCh:
			default:
				c.log.Printf("simlink: read: %v", err)
			}
			return
		}
		lines := splitChunk(string(data))
		if len(lines) > 0 && c.onCommands != nil {
			c.onCommands(lines)
		}
	}
}

func (c *Client) writePump() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeCh:
			return
		case msg := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				c.log.Printf("simlink: write: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// splitChunk breaks a simulator message into protocol lines, dropping
// blank lines and the room header some streams prepend
func splitChunk(chunk string) []string {
	var lines []string
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ">") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
