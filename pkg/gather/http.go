package gather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
)

const TalliesPath = "/v1/tallies"

// Server is the coordinator side of the HTTP transport. Remote ranks POST their
// envelopes; each request is held open until its round completes, which makes the
// worker's Gather call a barrier as well.
type Server struct {
	group  *Group
	coord  *Member
	logger *slog.Logger
	ln     net.Listener
	srv    *http.Server
}

// NewServer listens on addr for a group of the given size. The coordinator's own
// contribution goes through Server.Gather.
func NewServer(addr string, size int, logger *slog.Logger) (*Server, error) {
	group, err := NewGroup(size)
	if err != nil {
		return nil, err
	}
	coord, err := group.Member(partition.Identity{Rank: partition.Coordinator, Size: size})
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{group: group, coord: coord, logger: logger, ln: ln}
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Gather server stopped", "error", err)
		}
	}()
	logger.Info("Gather server listening", "addr", ln.Addr().String(), "size", size)

	return s, nil
}

// Addr is the address the server is listening on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+TalliesPath, s.handleTally)
	return mux
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid envelope: "+err.Error(), http.StatusBadRequest)
		return
	}
	if env.Kind != KindTally {
		http.Error(w, fmt.Sprintf("unexpected kind %q", env.Kind), http.StatusBadRequest)
		return
	}
	if env.Size != s.group.Size() {
		http.Error(w, fmt.Sprintf("group size mismatch: worker says %d, coordinator has %d", env.Size, s.group.Size()), http.StatusConflict)
		return
	}
	if env.Rank == partition.Coordinator {
		http.Error(w, "rank 0 is the coordinator", http.StatusConflict)
		return
	}

	rnd, err := s.group.contribute(env.Round, env.Rank, env.Tally())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.logger.Info("Received tally", "rank", env.Rank, "round", env.Round,
		"hashtags", len(env.Hashtags), "languages", len(env.Languages))

	select {
	case <-rnd.done:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
		s.logger.Warn("Worker went away before round completed", "rank", env.Rank, "round", env.Round)
	}
}

// Gather contributes the coordinator's own tally and waits for every remote rank.
func (s *Server) Gather(ctx context.Context, round string, local *models.Tally) ([]*models.Tally, error) {
	return s.coord.Gather(ctx, round, local)
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Client is the worker side of the HTTP transport.
type Client struct {
	id        partition.Identity
	url       string
	http      *http.Client
	logger    *slog.Logger
	redialGap time.Duration
}

// NewClient targets the coordinator at baseURL ("host:port" or "http://host:port").
func NewClient(baseURL string, id partition.Identity, logger *slog.Logger) (*Client, error) {
	if id.IsCoordinator() {
		return nil, errors.New("the coordinator does not post tallies; use Server")
	}
	if baseURL == "" {
		return nil, errors.New("coordinator address is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		id:  id,
		url: strings.TrimSuffix(baseURL, "/") + TalliesPath,
		// No timeout: the response is the end of the barrier.
		http:      &http.Client{},
		logger:    logger,
		redialGap: 500 * time.Millisecond,
	}, nil
}

// Gather posts the local tally and blocks until the coordinator releases the round.
// Connection refusals are re-dialled until ctx ends since the coordinator may start later.
func (c *Client) Gather(ctx context.Context, round string, local *models.Tally) ([]*models.Tally, error) {
	if local == nil {
		return nil, errors.New("nil tally")
	}

	body, err := json.Marshal(Envelope{
		Round:     round,
		Kind:      KindTally,
		Rank:      c.id.Rank,
		Size:      c.id.Size,
		Hashtags:  local.Hashtags,
		Languages: local.Languages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tally: %w", err)
	}

	for {
		err := c.post(ctx, body)
		if err == nil {
			return nil, nil
		}
		if !errors.Is(err, syscall.ECONNREFUSED) {
			return nil, err
		}

		c.logger.Debug("Coordinator not reachable yet", "rank", c.id.Rank, "url", c.url)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.redialGap):
		}
	}
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post tally: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("coordinator rejected tally: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
