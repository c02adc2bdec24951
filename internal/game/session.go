package game

// session is one attached socket. The player attachment is set on the first
// join frame and is the sole source of truth for who the socket is.
type session struct {
	conn   *clientConn
	player *Player
	closed bool
}

func (s *session) joined() bool { return s.player != nil }

// sessionRegistry is the set of currently attached connections, in join
// order. It is owned by the room actor and must only be touched from its
// loop.
type sessionRegistry struct {
	sessions []*session
}

func (sr *sessionRegistry) add(c *clientConn) *session {
	s := &session{conn: c}
	sr.sessions = append(sr.sessions, s)
	return s
}

func (sr *sessionRegistry) remove(c *clientConn) *session {
	for i, s := range sr.sessions {
		if s.conn == c {
			sr.sessions = append(sr.sessions[:i], sr.sessions[i+1:]...)
			return s
		}
	}
	return nil
}

func (sr *sessionRegistry) byConn(c *clientConn) *session {
	for _, s := range sr.sessions {
		if s.conn == c {
			return s
		}
	}
	return nil
}

func (sr *sessionRegistry) byPlayerID(id string) *session {
	for _, s := range sr.sessions {
		if s.player != nil && s.player.ID == id {
			return s
		}
	}
	return nil
}

func (sr *sessionRegistry) len() int { return len(sr.sessions) }

// joinedCount counts sessions that have completed a join.
func (sr *sessionRegistry) joinedCount() int {
	n := 0
	for _, s := range sr.sessions {
		if s.joined() {
			n++
		}
	}
	return n
}

// connectedIDs returns the player ids of all joined sessions.
func (sr *sessionRegistry) connectedIDs() map[string]bool {
	out := make(map[string]bool, len(sr.sessions))
	for _, s := range sr.sessions {
		if s.joined() {
			out[s.player.ID] = true
		}
	}
	return out
}

// players returns the joined players in join order.
func (sr *sessionRegistry) players() []Player {
	out := make([]Player, 0, len(sr.sessions))
	for _, s := range sr.sessions {
		if s.joined() {
			out = append(out, *s.player)
		}
	}
	return out
}
