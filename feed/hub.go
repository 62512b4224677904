package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
)

// Event types
const (
	EventOrderCreated       = "order_created"
	EventPaymentUpdated     = "payment_updated"
	EventFulfillmentUpdated = "fulfillment_updated"
	EventStaffNotification  = "staff_notification"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// OrderUpdate is the staff-facing order payload: the public view plus the
// internal id the back office patches by.
type OrderUpdate struct {
	OrderID string `json:"orderId"`
	models.OrderStatusView
}

type client struct {
	conn *websocket.Conn
	who  string
	send chan []byte
}

// Hub fans order events out to connected back-office clients. Each client
// has its own writer goroutine; publishers never touch the socket.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, who string) {
	c := h.add(conn, who)
	go h.writePump(c)
}

func (h *Hub) add(conn *websocket.Conn, who string) *client {
	c := &client{conn: conn, who: who, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = c
	return c
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop must be called with the mutex held.
func (h *Hub) drop(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithError(err).WithField("client", c.who).Warn("feed: dropping client")
			h.Unregister(c.conn)
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func orderUpdate(order *models.Order) OrderUpdate {
	return OrderUpdate{OrderID: order.ID, OrderStatusView: order.StatusView()}
}

func (h *Hub) PublishOrderCreated(order *models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

func (h *Hub) PublishPaymentUpdated(order *models.Order) {
	h.Broadcast(Message{Event: EventPaymentUpdated, Data: orderUpdate(order)})
}

func (h *Hub) PublishFulfillmentUpdated(order *models.Order) {
	h.Broadcast(Message{Event: EventFulfillmentUpdated, Data: orderUpdate(order)})
}

func (h *Hub) PublishStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotification, Data: message})
}

// Broadcast queues msg for every client without blocking. A client whose
// queue is full is dropped. A nil hub is a no-op.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("feed: marshal message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithField("client", c.who).Warn("feed: client too slow, dropping")
			h.drop(conn)
		}
	}
	utils.InfoLogger.WithField("event", msg.Event).Debugf("feed: queued for %d clients", len(h.clients))
}
