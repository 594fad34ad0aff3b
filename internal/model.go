package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom = 8
	RoomCodeLength    = 5

	// Room codes avoid glyphs that read ambiguously (I/1, O/0).
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	ChatMessageLimit = 200

	BonusCategoryKey = "bonus"
)

// Phase and grace timings. Vars rather than consts so the test suite can
// shrink them; production never mutates these.
var (
	DrawAnimationDuration = 2000 * time.Millisecond
	LetterRevealDuration  = 1500 * time.Millisecond
	StopCountdownDuration = 5000 * time.Millisecond
	StopCountdownSeconds  = 5
	EndGameCooldown       = 10000 * time.Millisecond
	ReconnectGrace        = 120 * time.Second

	PingInterval = 25 * time.Second
	PongTimeout  = 60 * time.Second
)

// Alphabet is the 33-letter Georgian alphabet in canonical order. Letter
// draws pick uniformly from the letters not yet used this game.
var Alphabet = []string{
	"ა", "ბ", "გ", "დ", "ე", "ვ", "ზ", "თ", "ი", "კ", "ლ",
	"მ", "ნ", "ო", "პ", "ჟ", "რ", "ს", "ტ", "უ", "ფ", "ქ",
	"ღ", "ყ", "შ", "ჩ", "ც", "ძ", "წ", "ჭ", "ხ", "ჯ", "ჰ",
}

// DefaultCategories are the prompts a freshly created room starts with.
var DefaultCategories = []string{
	"ქალაქი",  // city
	"ქვეყანა", // country
	"მდინარე", // river
	"ცხოველი", // animal
	"მცენარე", // plant
	"სახელი",  // first name
	"საჭმელი", // food
}

// BonusCategories is the pool the extra round category is drawn from when
// settings enable the bonus.
var BonusCategories = []string{
	"ფილმი",     // movie
	"მსახიობი",  // actor
	"მომღერალი", // singer
	"პროფესია",  // profession
	"ბრენდი",    // brand
	"სპორტი",    // sport
	"ფერი",      // color
	"ნივთი",     // object
}

type GamePhase string

const (
	PhaseLobby   GamePhase = "lobby"
	PhaseSticks  GamePhase = "sticks"
	PhasePlaying GamePhase = "playing"
	PhaseStopped GamePhase = "stopped"
	PhaseResults GamePhase = "results"
	PhaseEnded   GamePhase = "ended"
)

// Settings are the host-tunable room options.
type Settings struct {
	MinTime    int      `json:"minTime"` // seconds before STOP unlocks
	MaxRounds  int      `json:"maxRounds"`
	UseBonus   bool     `json:"useBonus"`
	Categories []string `json:"categories"`
}

func DefaultSettings() Settings {
	return Settings{
		MinTime:    60,
		MaxRounds:  5,
		UseBonus:   true,
		Categories: append([]string(nil), DefaultCategories...),
	}
}

// CategoryScore is the scoring-pass result for one (player, category)
// pair. Points is cached at scoring time; invalidation toggles move this
// cached value in and out of the player's totals without recomputing.
type CategoryScore struct {
	Points        int    `json:"points"`
	IsValid       bool   `json:"isValid"`
	Answer        string `json:"answer"`
	InvalidatedBy string `json:"invalidatedBy,omitempty"`
}

type Room struct {
	Code     string             `json:"code"`
	HostID   string             `json:"hostId"`
	Players  map[string]*Player `json:"players"`
	Order    []string           `json:"-"` // seat order: join sequence
	Settings Settings           `json:"settings"`

	Phase GamePhase `json:"phase"`

	// Round state. DrawnLetter is staged while the sticks animation runs
	// and becomes CurrentLetter when play starts.
	UsedLetters      map[string]bool   `json:"-"`
	DrawnLetter      string            `json:"-"`
	CurrentLetter    string            `json:"currentLetter,omitempty"`
	ActiveCategories map[string]string `json:"activeCategories,omitempty"`
	CategoryOrder    []string          `json:"-"`
	CurrentRound     int               `json:"currentRound"`
	StoppedBy        string            `json:"stoppedBy,omitempty"`
	StopTimerArmed   bool              `json:"stopTimerArmed"`
	AllSubmitted     bool              `json:"allSubmitted"`

	// All mutations of the room and its players are serialized here.
	Mu sync.RWMutex `json:"-"`

	// PhaseSeq increments on every phase transition; scheduled callbacks
	// capture it and no-op if the room moved on before they fired.
	PhaseSeq uint64 `json:"-"`

	PhaseTimer   *time.Timer `json:"-"`
	MinTimeTimer *time.Timer `json:"-"`
}

func NewRoom(code string) *Room {
	return &Room{
		Code:        code,
		Players:     make(map[string]*Player),
		Order:       make([]string, 0, MaxPlayersPerRoom),
		Settings:    DefaultSettings(),
		Phase:       PhaseLobby,
		UsedLetters: make(map[string]bool),
	}
}

// Session maps an opaque client token to a player's seat in a room.
type Session struct {
	Token    string `json:"-"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// PublicRoomInfo is the lobby-list projection served over HTTP. It must
// never carry session tokens or player ids.
type PublicRoomInfo struct {
	Code        string             `json:"code"`
	HostNick    string             `json:"hostNick"`
	HostAvatar  string             `json:"hostAvatar"`
	PlayerCount int                `json:"playerCount"`
	MaxPlayers  int                `json:"maxPlayers"`
	Settings    PublicRoomSettings `json:"settings"`
}

type PublicRoomSettings struct {
	Rounds   int  `json:"rounds"`
	HasBonus bool `json:"hasBonus"`
}
