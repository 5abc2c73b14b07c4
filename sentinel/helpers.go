package sentinel

import "strconv"

// Ping sends PING.
func (c *Client) Ping(callback ReplyCallback) {
	c.Send(argv("PING"), callback)
}

// Masters sends SENTINEL MASTERS.
func (c *Client) Masters(callback ReplyCallback) {
	c.Send(argv("SENTINEL", "MASTERS"), callback)
}

// Master sends SENTINEL MASTER <name>.
func (c *Client) Master(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "MASTER", name), callback)
}

// Slaves sends SENTINEL SLAVES <name>.
func (c *Client) Slaves(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "SLAVES", name), callback)
}

// SentinelsOf sends SENTINEL SENTINELS <name>. Named SentinelsOf, not
// Sentinels, to avoid colliding with the monitor-registry accessor.
func (c *Client) SentinelsOf(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "SENTINELS", name), callback)
}

// CkQuorum sends SENTINEL CKQUORUM <name>.
func (c *Client) CkQuorum(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "CKQUORUM", name), callback)
}

// Failover sends SENTINEL FAILOVER <name>.
func (c *Client) Failover(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "FAILOVER", name), callback)
}

// Reset sends SENTINEL RESET <pattern>.
func (c *Client) Reset(pattern string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "RESET", pattern), callback)
}

// FlushConfig sends SENTINEL FLUSHCONFIG.
func (c *Client) FlushConfig(callback ReplyCallback) {
	c.Send(argv("SENTINEL", "FLUSHCONFIG"), callback)
}

// Monitor sends SENTINEL MONITOR <name> <ip> <port> <quorum>.
func (c *Client) Monitor(name, ip string, port, quorum int, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "MONITOR", name, ip, strconv.Itoa(port), strconv.Itoa(quorum)), callback)
}

// Remove sends SENTINEL REMOVE <name>.
func (c *Client) Remove(name string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "REMOVE", name), callback)
}

// Set sends SENTINEL SET <name> <option> <value>.
func (c *Client) Set(name, option, value string, callback ReplyCallback) {
	c.Send(argv("SENTINEL", "SET", name, option, value), callback)
}

func argv(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}
