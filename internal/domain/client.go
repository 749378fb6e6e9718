package domain

// Client is a patient who attended the screening programme.
//
// Episodes are kept in insertion order, which carries no temporal meaning.
type Client struct {
	ID       string
	Episodes []*Episode
	Site     string
}

// Status applies a fixed precedence across all episodes: any interval case
// episode makes the client CI, then any malignant opinion makes it M, then any
// benign opinion makes it B. Otherwise the client is N.
func (c *Client) Status() ClientStatus {
	for _, ep := range c.Episodes {
		if ep.Type.IsIntervalCase() {
			return ClientStatusIntervalCancer
		}
	}
	for _, ep := range c.Episodes {
		if ep.HasMalignantOpinions() {
			return ClientStatusMalignant
		}
	}
	for _, ep := range c.Episodes {
		if ep.HasBenignOpinions() {
			return ClientStatusBenign
		}
	}
	return ClientStatusNormal
}

// Episode returns the first episode with the given ID.
func (c *Client) Episode(id string) (*Episode, error) {
	for _, ep := range c.Episodes {
		if ep.ID == id {
			return ep, nil
		}
	}
	return nil, ErrEpisodeNotFound
}
