package risk

import (
	"errors"
	"fmt"
)

// ErrInvalidLabel is returned when a fixed response is requested for a
// label that has no crisis payload. Reaching it is an orchestration bug.
var ErrInvalidLabel = errors.New("risk: no fixed response registered for label")

// ResourcesCard is the pre-reviewed emergency contact block. It is valid
// transport Markdown and must be passed through without re-escaping.
const ResourcesCard = "**Если есть риск для жизни — немедленно звоните 112.**\n\n" +
	"**Москва и МО — круглосуточно:**\n" +
	"• Телефон неотложной психологической помощи: **051** (с городского) / **8 (495) 051** (с мобильного)\n" +
	"• Экстренная медико-психологическая помощь (ПКБ №1 им. Алексеева): **+7 (499) 791-20-50**\n" +
	"• Психологическая помощь МЧС: **+7 (495) 989-50-50**\n" +
	"• Детский телефон доверия: **8-800-2000-122** или короткий **124** (с мобильного)\n" +
	"• Универсальный номер экстренных служб РФ: **112**\n\n" +
	"*Звонки анонимны там, где указано. Этот бот не заменяет профессиональную помощь.*"

// FollowUpQuestion is sent right after a crisis card to keep the dialog open.
const FollowUpQuestion = "Если безопасно, напиши, где ты сейчас и кто рядом. Я постараюсь помочь."

// Responder maps each crisis label to its pre-authored, human-reviewed
// response payload. Identical label, byte-identical payload: crisis wording
// is never subject to generative variance or backend availability.
type Responder struct {
	payloads map[Label]string
}

// NewResponder builds the fixed response table and verifies at construction
// time that every crisis label has a registered payload.
func NewResponder() (*Responder, error) {
	r := &Responder{payloads: map[Label]string{
		Imminent: "Похоже, прямо сейчас тебе очень опасно. Пожалуйста, остановись и набери **112** — " +
			"это самый быстрый способ получить помощь немедленно.\n\n" + ResourcesCard,
		HighRisk: "Я вижу, что тема очень тяжёлая, и мне важно, чтобы ты был(а) в безопасности. " +
			"Вот проверенные ресурсы помощи:\n\n" + ResourcesCard,
		SelfHarmNonLethal: "Спасибо, что написал(а) об этом. Боль, которая толкает причинять себе вред, — " +
			"это серьёзно, и с ней можно работать. Вот куда можно обратиться:\n\n" + ResourcesCard,
		ThirdPartyConcern: "Ты правильно делаешь, что беспокоишься о близком человеке. " +
			"Не оставляй его одного и предложи вместе позвонить по одному из номеров:\n\n" + ResourcesCard,
	}}
	for label := Imminent; label <= Benign; label++ {
		_, registered := r.payloads[label]
		if label.IsCrisis() && !registered {
			return nil, fmt.Errorf("risk: crisis label %s has no response payload", label)
		}
		if !label.IsCrisis() && registered {
			return nil, fmt.Errorf("risk: non-crisis label %s must not have a payload", label)
		}
	}
	return r, nil
}

// Select returns the fixed payload for a crisis label. Non-crisis labels
// are a programming error and yield ErrInvalidLabel.
func (r *Responder) Select(label Label) (string, error) {
	payload, ok := r.payloads[label]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidLabel, label)
	}
	return payload, nil
}
