package netutils

import "net"

func IsInAddrAny(addr string) bool {
	return addr == "" || addr == "::/0" || addr == "0.0.0.0"
}

// GetOutboundIP finds the local address the system would route external
// traffic through. No packets are sent.
func GetOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	_ = conn.Close()

	return localAddr.IP, nil
}

// GetAdvertiseAddress picks the address to advertise to peers and clients
// for a node bound to bindAddress. A concrete bind address is advertised
// as-is; an inaddr_any bind falls back to the system's outbound address.
func GetAdvertiseAddress(bindAddress string) (string, error) {
	if !IsInAddrAny(bindAddress) {
		return bindAddress, nil
	}

	outboundIP, err := GetOutboundIP()
	if err != nil {
		return "", err
	}

	return outboundIP.String(), nil
}
