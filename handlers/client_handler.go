package handlers

import (
	"errors"
	"log"

	"github.com/gorilla/websocket"

	"furniroom/server/messages"
	"furniroom/server/models"
	"furniroom/server/network"
	"furniroom/server/protocol"
	"furniroom/server/services"
)

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	sender        services.Sender
	rooms         *services.RoomManager
	inventory     *services.InventoryService
	clientManager *ClientManager
	user          models.Avatar
	room          *services.Room
}

// NewClientHandler creates a handler for an authenticated user. sender
// receives everything the rooms send to this user.
func NewClientHandler(user models.Avatar, sender services.Sender, rooms *services.RoomManager, inventory *services.InventoryService, clientManager *ClientManager) *ClientHandler {
	return &ClientHandler{
		sender:        sender,
		rooms:         rooms,
		inventory:     inventory,
		clientManager: clientManager,
		user:          user,
	}
}

// HandleClientConnection handles a new client connection until it closes
func HandleClientConnection(wsConn *websocket.Conn, user models.Avatar, sendBuffer int, rooms *services.RoomManager, inventory *services.InventoryService, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn, sendBuffer)
	handler := NewClientHandler(user, conn, rooms, inventory, clientManager)
	handler.conn = conn

	clientManager.AddClient(conn.ID, handler)
	log.Printf("User %s (%d) connected from %s as %s", user.Username, user.UserID, wsConn.RemoteAddr(), conn.ID)

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	// Clean up when the connection is closed
	handler.Disconnect()
	clientManager.RemoveClient(conn.ID)
	log.Printf("User %s (%d) disconnected", user.Username, user.UserID)
}

// HandleMessage handles incoming packets from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, msg *protocol.ClientMessage) {
	h.dispatch(msg)
}

func (h *ClientHandler) dispatch(msg *protocol.ClientMessage) {
	var err error
	switch msg.Header() {
	case messages.HeaderEnterRoom:
		err = h.handleEnterRoom(msg)
	case messages.HeaderPlaceItem:
		err = h.inRoom(msg, h.handlePlaceItem)
	case messages.HeaderMoveFloorItem:
		err = h.inRoom(msg, h.handleMoveFloorItem)
	case messages.HeaderMoveWallItem:
		err = h.inRoom(msg, h.handleMoveWallItem)
	case messages.HeaderUseFloorItem:
		err = h.inRoom(msg, h.handleUseFloorItem)
	case messages.HeaderUseWallItem:
		err = h.inRoom(msg, h.handleUseWallItem)
	case messages.HeaderPickupItem:
		err = h.inRoom(msg, h.handlePickupItem)
	case messages.HeaderWalk:
		err = h.inRoom(msg, h.handleWalk)
	default:
		log.Printf("Unknown message header %d from user %d", msg.Header(), h.user.UserID)
		return
	}

	if err != nil {
		h.reject(msg.Header(), err)
	}
}

var errNotInRoom = errors.New("not in a room")

// reject logs a refused request. The client is not told; it keeps its own
// view until the next broadcast corrects it.
func (h *ClientHandler) reject(header int16, err error) {
	reason := services.RejectionReason(err)
	switch {
	case errors.Is(err, messages.ErrMalformedRequest):
		reason = "malformed"
	case errors.Is(err, errNotInRoom):
		reason = "not_in_room"
	}
	services.CountRejection(reason)
	log.Printf("Rejected message %d from user %d: %v", header, h.user.UserID, err)
}

func (h *ClientHandler) inRoom(msg *protocol.ClientMessage, handle func(*protocol.ClientMessage) error) error {
	if h.room == nil {
		return errNotInRoom
	}
	return handle(msg)
}

func (h *ClientHandler) handleEnterRoom(msg *protocol.ClientMessage) error {
	req, err := messages.ParseEnterRoom(msg)
	if err != nil {
		return err
	}

	if h.room != nil {
		if h.room.ID == req.RoomID {
			return nil
		}
		h.rooms.Leave(h.room, h.user.UserID, h.sender)
		h.room = nil
	}

	avatar := h.user
	room, err := h.rooms.Enter(req.RoomID, &avatar, h.sender)
	if err != nil {
		return err
	}
	h.room = room
	log.Printf("User %d entered room %d", h.user.UserID, room.ID)
	return nil
}

func (h *ClientHandler) handlePlaceItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParsePlaceItem(msg)
	if err != nil {
		return err
	}
	if req.Wall {
		return h.room.PlaceWallItem(h.user.UserID, req.ItemID, req.WallPosition)
	}
	return h.room.PlaceFloorItem(h.user.UserID, req.ItemID, req.X, req.Y, req.Rotation)
}

func (h *ClientHandler) handleMoveFloorItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParseMoveFloorItem(msg)
	if err != nil {
		return err
	}
	return h.room.MoveFloorItem(h.user.UserID, req.ItemID, req.X, req.Y, req.Rotation)
}

func (h *ClientHandler) handleMoveWallItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParseMoveWallItem(msg)
	if err != nil {
		return err
	}
	return h.room.MoveWallItem(h.user.UserID, req.ItemID, req.WallPosition)
}

func (h *ClientHandler) handleUseFloorItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParseUseItem(msg)
	if err != nil {
		return err
	}
	return h.room.UseFloorItem(h.user.UserID, req.ItemID)
}

func (h *ClientHandler) handleUseWallItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParseUseItem(msg)
	if err != nil {
		return err
	}
	return h.room.UseWallItem(h.user.UserID, req.ItemID)
}

func (h *ClientHandler) handlePickupItem(msg *protocol.ClientMessage) error {
	req, err := messages.ParsePickupItem(msg)
	if err != nil {
		return err
	}
	return h.room.PickupItem(h.user.UserID, req.ItemID, req.Wall)
}

func (h *ClientHandler) handleWalk(msg *protocol.ClientMessage) error {
	req, err := messages.ParseWalk(msg)
	if err != nil {
		return err
	}
	if !h.room.SetUnitPosition(h.user.UserID, req.X, req.Y) {
		return services.ErrInvalidTile
	}
	return nil
}

// Disconnect removes the user from its room and drops cached state
func (h *ClientHandler) Disconnect() {
	if h.room != nil {
		h.rooms.Leave(h.room, h.user.UserID, h.sender)
		h.room = nil
	}
	h.inventory.Forget(h.user.UserID)
}
