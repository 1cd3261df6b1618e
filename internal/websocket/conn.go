package websocket

import (
	"github.com/gorilla/websocket"
)

// gorillaConn satisfies Connection with a gorilla connection. Only
// RemoteAddr differs: gorilla returns a net.Addr.
type gorillaConn struct {
	*websocket.Conn
}

// WrapConn adapts an upgraded gorilla connection for the client pumps
func WrapConn(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
