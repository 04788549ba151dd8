package bot

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/hotelbot/core/telegram/helpers"
	"github.com/m3rciful/hotelbot/core/telegram/keyboard"
	"github.com/m3rciful/hotelbot/core/telegram/state"
	"github.com/m3rciful/hotelbot/internal/dialog"
)

func plainText(msg dialog.Outgoing) bool {
	return msg.Text != "" && len(msg.Buttons) == 0 && msg.Calendar == nil && len(msg.Photos) == 0
}

// render delivers dialog output to the chat and moves the FSM to the
// returned step. A lone text reply rides the async dispatcher; longer
// sequences send synchronously so they keep their order.
func (h *Handlers) render(c tele.Context, res dialog.Result) error {
	if len(res.Messages) == 1 && plainText(res.Messages[0]) {
		if err := tghelpers.SendText(c, res.Messages[0].Text); err != nil {
			return err
		}
	} else {
		for _, msg := range res.Messages {
			if err := h.sendOutgoing(c, msg); err != nil {
				return err
			}
		}
	}
	if res.Next == dialog.StepNone {
		h.fsm.ClearState(c.Sender().ID)
	} else {
		h.fsm.SetState(c.Sender().ID, stepState(res.Next))
	}
	return nil
}

func (h *Handlers) sendOutgoing(c tele.Context, msg dialog.Outgoing) error {
	for _, url := range msg.Photos {
		photo := &tele.Photo{File: tele.FromURL(url)}
		if err := c.Send(photo); err != nil {
			return err
		}
	}
	switch {
	case msg.Calendar != nil:
		now := time.Now()
		markup := calendarMarkup(msg.Calendar.Name, now.Year(), now.Month())
		return c.Send(msg.Calendar.Title, markup)
	case len(msg.Buttons) > 0:
		return c.Send(msg.Text, keyboard.InlineButtons(inlineButtons(msg.Buttons)))
	case msg.Text != "":
		return c.Send(msg.Text)
	}
	return nil
}

func stepState(step dialog.Step) state.State {
	return state.State(step)
}

func inlineButtons(buttons []dialog.Button) []keyboard.InlineBtn {
	out := make([]keyboard.InlineBtn, len(buttons))
	for i, b := range buttons {
		out[i] = keyboard.InlineBtn{Text: b.Label, Unique: b.Key, Data: b.Payload}
	}
	return out
}
