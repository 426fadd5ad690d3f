// Package realtime reparte los eventos de órdenes y mesas a los clientes conectados por SSE.
//
// Un Hub vive en cada instancia y entrega a los suscriptores de una sala sin bloquear:
// si el buffer de un suscriptor está lleno el mensaje se descarta para ese suscriptor.
// Con Redis configurado, RedisBroadcaster publica en un canal y cada instancia alimenta
// su Hub desde la suscripción, de modo que todos los clientes ven todos los eventos.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/pos-restaurante-api/internal/application/order"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

const defaultBuffer = 32

// ErrTooManyClients el hub alcanzó su tope de suscriptores.
var ErrTooManyClients = errors.New("realtime: demasiados clientes conectados")

var _ order.Notifier = (*Hub)(nil)

// Message evento listo para enviar. Data ya es JSON.
type Message struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Subscriber recibe los mensajes de una sala por C.
type Subscriber struct {
	C    <-chan Message
	ch   chan Message
	room string
}

// Hub registro de suscriptores por sala.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Subscriber]struct{}
	clients    int
	buffer     int
	maxClients int
	dropped    atomic.Int64
	log        *logger.Logger
}

// NewHub crea el hub. buffer <= 0 usa el valor por defecto; maxClients <= 0 no limita.
func NewHub(buffer, maxClients int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		rooms:      make(map[string]map[*Subscriber]struct{}),
		buffer:     buffer,
		maxClients: maxClients,
		log:        log.Component("realtime"),
	}
}

// Subscribe registra un suscriptor en la sala.
func (h *Hub) Subscribe(room string) (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxClients > 0 && h.clients >= h.maxClients {
		return nil, ErrTooManyClients
	}
	ch := make(chan Message, h.buffer)
	s := &Subscriber{C: ch, ch: ch, room: room}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Subscriber]struct{})
	}
	h.rooms[room][s] = struct{}{}
	h.clients++
	return s, nil
}

// Unsubscribe quita al suscriptor y cierra su canal. Llamarlo dos veces no tiene efecto.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[s.room]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.rooms, s.room)
	}
	h.clients--
	close(s.ch)
}

// Publish entrega m a la sala sin bloquear.
func (h *Hub) Publish(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[m.Room] {
		select {
		case s.ch <- m:
		default:
			h.dropped.Add(1)
		}
	}
}

// Emit serializa payload y lo publica en la sala.
func (h *Hub) Emit(_ context.Context, room, event string, payload any) {
	m, err := NewMessage(room, event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("evento no serializable")
		return
	}
	h.Publish(m)
}

// Clients suscriptores conectados.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients
}

// Dropped mensajes descartados por suscriptores lentos.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// NewMessage arma el mensaje con el payload en JSON.
func NewMessage(room, event string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Room: room, Event: event, Data: data}, nil
}
