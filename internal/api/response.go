package api

import (
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/models"
)

type AlertResponse struct {
	ID          string    `json:"id"`
	SourceID    int64     `json:"source_id"`
	SourceTitle string    `json:"source_title"`
	Primary     string    `json:"primary"`
	Threats     []string  `json:"threats"`
	Proximity   string    `json:"proximity"`
	Nationwide  bool      `json:"nationwide"`
	Urgent      bool      `json:"urgent"`
	Status      bool      `json:"status"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type AlertList struct {
	Count  int             `json:"count"`
	Alerts []AlertResponse `json:"alerts"`
}

type SubscriberResponse struct {
	ChatID  int64     `json:"chat_id"`
	AddedAt time.Time `json:"added_at"`
}

type messageRequest struct {
	SourceID    int64  `json:"source_id" binding:"required"`
	SourceTitle string `json:"source_title"`
	Text        string `json:"text" binding:"required"`
}

type subscriberRequest struct {
	ChatID int64 `json:"chat_id" binding:"required"`
}

func toAlertResponse(a models.Alert) AlertResponse {
	threats := a.Threats
	if threats == nil {
		threats = []string{}
	}
	return AlertResponse{
		ID:          a.ID,
		SourceID:    a.SourceID,
		SourceTitle: a.SourceTitle,
		Primary:     a.Primary,
		Threats:     threats,
		Proximity:   a.Proximity,
		Nationwide:  a.Nationwide,
		Urgent:      a.Urgent,
		Status:      a.Status,
		Text:        a.Text,
		CreatedAt:   a.CreatedAt,
	}
}

func toAlertList(alerts []models.Alert) AlertList {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return AlertList{Count: len(out), Alerts: out}
}
