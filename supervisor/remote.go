//go:build linux

package supervisor

import "net"

// remoteOf extracts the 16-byte address form and printable text form of
// conn's peer, per spec §3 ChildRecord fields. IPv4 and IPv4-mapped IPv6
// addresses compare byte-exact under their mapped 16-byte form (spec §9).
func remoteOf(conn net.Conn) (addr [16]byte, text string) {
	tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return addr, conn.RemoteAddr().String()
	}
	ip16 := tcpAddr.IP.To16()
	copy(addr[:], ip16)
	return addr, tcpAddr.String()
}
