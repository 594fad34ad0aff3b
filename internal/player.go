package internal

import "time"

type Player struct {
	ID         string `json:"id"`
	Nick       string `json:"nick"`
	AvatarSeed string `json:"avatarSeed"`

	IsHost      bool `json:"isHost"`
	IsReady     bool `json:"isReady"`
	IsConnected bool `json:"isConnected"`

	// Transport binding; nil while disconnected. Never serialized.
	Conn *Conn `json:"-"`
	Room *Room `json:"-"` // back-reference, avoid circular JSON

	SessionToken string    `json:"-"`
	JoinedAt     time.Time `json:"-"`

	// Per-round state. Answers stay private until the scoring pass
	// publishes them through CategoryScores.
	Answers        map[string]string         `json:"-"`
	HasSubmitted   bool                      `json:"hasSubmitted"`
	CategoryScores map[string]*CategoryScore `json:"categoryScores,omitempty"`
	RoundScore     int                       `json:"roundScore"`
	TotalScore     int                       `json:"totalScore"`
}

func NewPlayer(id, nick, avatarSeed string) *Player {
	return &Player{
		ID:         id,
		Nick:       nick,
		AvatarSeed: avatarSeed,
		JoinedAt:   time.Now(),
		Answers:    make(map[string]string),
	}
}

// ResetRoundState clears everything scoped to a single round.
func (p *Player) ResetRoundState() {
	p.Answers = make(map[string]string)
	p.HasSubmitted = false
	p.CategoryScores = nil
	p.RoundScore = 0
}

// ResetGameState additionally clears the running total.
func (p *Player) ResetGameState() {
	p.ResetRoundState()
	p.TotalScore = 0
}

// PrivatePlayer is the restore-time view sent only to the owning client.
// Unlike the broadcast projection it includes the raw answers, so a
// reconnecting client can repopulate its inputs mid-round.
type PrivatePlayer struct {
	ID             string                    `json:"id"`
	Nick           string                    `json:"nick"`
	AvatarSeed     string                    `json:"avatarSeed"`
	IsHost         bool                      `json:"isHost"`
	IsReady        bool                      `json:"isReady"`
	HasSubmitted   bool                      `json:"hasSubmitted"`
	Answers        map[string]string         `json:"answers"`
	CategoryScores map[string]*CategoryScore `json:"categoryScores,omitempty"`
	RoundScore     int                       `json:"roundScore"`
	TotalScore     int                       `json:"totalScore"`
}

func (p *Player) PrivateView() *PrivatePlayer {
	answers := make(map[string]string, len(p.Answers))
	for k, v := range p.Answers {
		answers[k] = v
	}
	return &PrivatePlayer{
		ID:             p.ID,
		Nick:           p.Nick,
		AvatarSeed:     p.AvatarSeed,
		IsHost:         p.IsHost,
		IsReady:        p.IsReady,
		HasSubmitted:   p.HasSubmitted,
		Answers:        answers,
		CategoryScores: p.CategoryScores,
		RoundScore:     p.RoundScore,
		TotalScore:     p.TotalScore,
	}
}
