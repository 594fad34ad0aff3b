package internal

import (
	"encoding/json"
	"log"
)

// Message is the JSON envelope for every frame in both directions.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data,omitempty"`
}

// Encode marshals an event frame. A marshal failure is a programming
// defect; it is logged and the frame dropped.
func Encode[T any](msgType string, data T) []byte {
	raw, err := json.Marshal(Message[T]{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[Encode] failed to marshal %s frame: %v", msgType, err)
		return nil
	}
	return raw
}

// User-facing error strings. These exact strings are part of the client
// compatibility surface and must not be reworded.
const (
	ErrRoomNotFound    = "ოთახი ვერ მოიძებნა"
	ErrGameStarted     = "თამაში უკვე დაწყებულია"
	ErrRoomFull        = "ოთახი სავსეა (მაქს. 8 მოთამაშე)"
	ErrPlayersNotReady = "ყველა მოთამაშე მზად არ არის"
	ErrStopNotArmed    = "დაელოდეთ ტაიმერს"
	ErrWrongPhase      = "ეს მოქმედება ახლა შეუძლებელია"
)

// Inbound payloads.

type SessionRestoreData struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}

type RoomCreateData struct {
	Nick       string `json:"nick"`
	AvatarSeed string `json:"avatarSeed"`
	Token      string `json:"token"`
}

type RoomJoinData struct {
	Code       string `json:"code"`
	Nick       string `json:"nick"`
	AvatarSeed string `json:"avatarSeed"`
	Token      string `json:"token"`
}

type ReadyData struct {
	Ready bool `json:"ready"`
}

// SettingsUpdateData is a partial merge; nil fields keep their value.
type SettingsUpdateData struct {
	MinTime    *int     `json:"minTime,omitempty"`
	MaxRounds  *int     `json:"maxRounds,omitempty"`
	UseBonus   *bool    `json:"useBonus,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type TypingData struct {
	Category string `json:"category"`
}

type AnswersSubmitData struct {
	Answers map[string]string `json:"answers"`
}

type InvalidateData struct {
	TargetPlayerID string `json:"targetPlayerId"`
	Category       string `json:"category"`
}

type KickData struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

type ChatData struct {
	Message string `json:"message"`
}

// Outbound payloads.

type ErrorData struct {
	Message string `json:"message"`
}

// RoomState is the broadcast projection of a room. PublicState never
// carries per-player answers or the used-letter set.
type RoomState struct {
	Code        string    `json:"code"`
	HostID      string    `json:"hostId"`
	Players     []*Player `json:"players"`
	Settings    Settings  `json:"settings"`
	PublicState GameState `json:"publicState"`
}

type GameState struct {
	Phase            GamePhase         `json:"phase"`
	CurrentLetter    string            `json:"currentLetter,omitempty"`
	ActiveCategories map[string]string `json:"activeCategories,omitempty"`
	CategoryOrder    []string          `json:"categoryOrder,omitempty"`
	CurrentRound     int               `json:"currentRound"`
	StoppedBy        string            `json:"stoppedBy,omitempty"`
	StopTimerArmed   bool              `json:"stopTimerArmed"`
	AllSubmitted     bool              `json:"allSubmitted"`
}

type SessionRestoredData struct {
	Success    bool           `json:"success"`
	RoomCode   string         `json:"roomCode,omitempty"`
	PlayerID   string         `json:"playerId,omitempty"`
	RoomData   *RoomState     `json:"roomData,omitempty"`
	PlayerData *PrivatePlayer `json:"playerData,omitempty"`
}

type RoundStartData struct {
	Round         int               `json:"round"`
	Letter        string            `json:"letter"`
	Categories    map[string]string `json:"categories"`
	CategoryOrder []string          `json:"categoryOrder"`
	MinTime       int               `json:"minTime"`
}

type RoundStoppedData struct {
	StoppedBy string `json:"stoppedBy"`
	Countdown int    `json:"countdown"`
}

type PlayerResult struct {
	PlayerID       string                    `json:"playerId"`
	Nick           string                    `json:"nick"`
	CategoryScores map[string]*CategoryScore `json:"categoryScores"`
	RoundScore     int                       `json:"roundScore"`
	TotalScore     int                       `json:"totalScore"`
}

type RoundResultsData struct {
	Round       int            `json:"round"`
	Letter      string         `json:"letter"`
	IsLastRound bool           `json:"isLastRound"`
	Results     []PlayerResult `json:"results"`
}

type InvalidatedData struct {
	TargetPlayerID string `json:"targetPlayerId"`
	Category       string `json:"category"`
	InvalidatedBy  string `json:"invalidatedBy,omitempty"`
	Points         int    `json:"points"`
	RoundScore     int    `json:"roundScore"`
	TotalScore     int    `json:"totalScore"`
}

type Standing struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	Nick       string `json:"nick"`
	AvatarSeed string `json:"avatarSeed"`
	TotalScore int    `json:"totalScore"`
}

type GameEndedData struct {
	Standings []Standing `json:"standings"`
}

type ChatMessageData struct {
	PlayerID  string `json:"playerId"`
	Nick      string `json:"nick"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type TypingBroadcastData struct {
	PlayerID string `json:"playerId"`
	Nick     string `json:"nick"`
	Category string `json:"category"`
}
