package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pitchside/matchday/internal/app/api"
	"github.com/pitchside/matchday/internal/auth"
	"github.com/pitchside/matchday/internal/domains/entities"
	"github.com/pitchside/matchday/internal/storage"
	"github.com/pitchside/matchday/pkg/logging"
	"github.com/pitchside/matchday/pkg/utils"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// MatchLoader is the slice of the store the gateway needs to seed a
// room and to resolve the current version for live submits.
type MatchLoader interface {
	GetMatchRecord(ctx context.Context, matchId string) (entities.MatchRecord, error)
}

type server struct {
	address  string
	upgrader websocket.Upgrader

	config Config
	rooms  sync.Map
	mu     sync.Mutex

	authSecret    []byte
	matchLoader   MatchLoader
	reportService *api.Service
	apiHandler    *api.Handler
}

func NewServer() *server {
	cfg := NewConfig()
	awsCfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(cfg.AwsRegion),
	)
	if err != nil {
		logging.Fatal("failed to load aws config", zap.Error(err))
	}
	storageClient := storage.NewClient(
		dynamodb.NewFromConfig(awsCfg),
		storage.Config{
			MatchesTableName:     aws.String(cfg.MatchesTableName),
			MatchEventsTableName: aws.String(cfg.MatchEventsTableName),
			StandingsTableName:   aws.String(cfg.StandingsTableName),
			CoachesTableName:     aws.String(cfg.CoachesTableName),
		},
	)
	reportService := api.NewService(storageClient)
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		config:        cfg,
		authSecret:    []byte(cfg.AuthSecret),
		matchLoader:   storageClient,
		reportService: reportService,
		apiHandler:    api.NewHandler(reportService, []byte(cfg.AuthSecret)),
	}
	return srv
}

// Start method    starts the report server: REST surface plus the live
// websocket endpoint on one listener.
func (s *server) Start() error {
	router := mux.NewRouter()
	if s.apiHandler != nil {
		s.apiHandler.Register(router)
	}
	router.HandleFunc("/live/{matchId}", s.handleLive)
	logging.Info("report server started", zap.String("port", s.config.Port))
	return http.ListenAndServe(s.address, api.CorsHandler(router))
}

func (s *server) handleLive(w http.ResponseWriter, r *http.Request) {
	identity, err := s.auth(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(err.Error()))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error(
			"failed to upgrade connection",
			zap.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	matchId := mux.Vars(r)["matchId"]
	member := newReporter(conn, identity.UserId, identity.Name)

	// The session is authenticated before any room traffic; the client
	// waits for this frame before it may join.
	member.writeJson(authSuccessResponse{
		Type:   "authentication_success",
		UserId: identity.UserId,
		Name:   identity.Name,
	})

	// Handshake window: the first join must arrive before it closes.
	conn.SetReadDeadline(time.Now().Add(s.config.AuthTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
	})
	go s.pingLoop(member)

	var room *Room
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if room != nil {
				room.processLeave(member)
			}
			logging.Info(
				"connection closed",
				zap.String("remote_address", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			break
		}
		conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))

		payload := payload{}
		if err := json.Unmarshal(message, &payload); err != nil {
			member.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
			continue
		}
		room = s.handleReporterMessage(member, room, matchId, payload)
	}
}

func (s *server) pingLoop(member *reporter) {
	ticker := time.NewTicker(s.config.PongTimeout)
	defer ticker.Stop()
	for range ticker.C {
		err := member.writeControl(
			websocket.PingMessage,
			nil,
			time.Now().Add(writeWait),
		)
		if err != nil {
			return
		}
	}
}

// auth method    authenticates the connection and extracts the caller
// identity from the session token.
func (s *server) auth(r *http.Request) (auth.Identity, error) {
	token, err := auth.TokenFromRequest(r)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("no authorization")
	}
	identity, err := auth.ValidateToken(token, s.authSecret)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	return identity, nil
}

/*
loadRoom method    loads the room with corresponding matchId.
If no live room exists, create one seeded from the stored match record,
so a reporter joining after a restart starts from the persisted
scoreline instead of zero.
*/
func (s *server) loadRoom(matchId string) (*Room, error) {
	ctx := context.Background()

	record, err := s.matchLoader.GetMatchRecord(ctx, matchId)
	if err != nil {
		return nil, fmt.Errorf("failed to get match record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if value, loaded := s.rooms.Load(matchId); loaded {
		room, ok := value.(*Room)
		if !ok {
			return nil, ErrFailedToLoadRoom
		}
		if !room.isEnded() {
			logging.Info("room loaded", zap.String("match_id", matchId))
			return room, nil
		}
		s.rooms.Delete(matchId)
	}

	room := s.newRoom(record)
	s.rooms.Store(matchId, room)
	logging.Info("room created", zap.String("match_id", matchId))
	return room, nil
}

func (s *server) newRoom(record entities.MatchRecord) *Room {
	room := &Room{
		matchId:    record.MatchId,
		homeTeamId: record.HomeTeamId,
		awayTeamId: record.AwayTeamId,
		state: roomState{
			homeScore: record.HomeScore,
			awayScore: record.AwayScore,
			shifts:    make(map[string]playerShiftResponse),
		},
		reporters:     make(map[string]*reporter),
		updateCh:      make(chan update),
		done:          make(chan struct{}),
		config:        RoomConfig{IdleTimeout: s.config.IdleTimeout},
		closedHandler: s.handleRoomClosed,
		submitHandler: s.handleLiveSubmit,
	}
	// Teardown if nobody joins within the idle window. The room
	// goroutine decides, so a racing join wins over the timer.
	room.idleTimer = utils.NewTimer(s.config.IdleTimeout)
	go func() {
		for {
			select {
			case <-room.idleTimer.C():
				room.processClose()
			case <-room.done:
				return
			}
		}
	}()
	go room.start()
	return room
}

func (s *server) removeRoom(matchId string) {
	s.rooms.Delete(matchId)
}
