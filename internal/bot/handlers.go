// Package bot binds the dialogue machine to Telegram: command and
// callback handlers, FSM text-step routing, and rendering of dialog
// output into messages, keyboards and photos.
package bot

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/hotelbot/core/telegram"
	"github.com/m3rciful/hotelbot/core/telegram/callbacks"
	"github.com/m3rciful/hotelbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/hotelbot/core/telegram/helpers"
	"github.com/m3rciful/hotelbot/core/telegram/state"
	"github.com/m3rciful/hotelbot/internal/dialog"
	"github.com/m3rciful/hotelbot/internal/storage"
)

// tempPhotoHotel keys the hotel id held between the photo button press
// and the count answer.
const tempPhotoHotel = "photo_hotel_id"

// Handlers wires the dialogue machine into the bot registry.
type Handlers struct {
	machine *dialog.Machine
	fsm     state.Manager
	reg     *tg.Registry
}

// NewHandlers builds the Telegram-facing handler set.
func NewHandlers(machine *dialog.Machine, fsm state.Manager) *Handlers {
	return &Handlers{machine: machine, fsm: fsm}
}

// FSM exposes the state manager for text routing.
func (h *Handlers) FSM() state.Manager {
	return h.fsm
}

// Register installs every command, callback and FSM step handler.
func (h *Handlers) Register(reg *tg.Registry) {
	h.reg = reg

	reg.RegisterCommand("/start", commands.Command{Handler: h.onStart, Description: "О боте"})
	reg.RegisterCommand("/help", commands.Command{Handler: h.onHelp, Description: "Помощь по командам"})
	reg.RegisterCommand("/lowprice", commands.Command{Handler: h.searchCommand(storage.KindLowPrice), Description: "Самые дешевые отели в городе"})
	reg.RegisterCommand("/highprice", commands.Command{Handler: h.searchCommand(storage.KindHighPrice), Description: "Самые дорогие отели в городе"})
	reg.RegisterCommand("/bestdeal", commands.Command{Handler: h.searchCommand(storage.KindBestDeal), Description: "Лучшее предложение по цене и расстоянию"})
	reg.RegisterCommand("/history", commands.Command{Handler: h.onHistory, Description: "Результаты последнего запроса"})

	reg.SetTextFallback(h.onUnknownText)

	_ = reg.RegisterCallback(dialog.KeyLocale, h.onLocale)
	_ = reg.RegisterCallback(dialog.KeyCity, h.onCityChoice)
	_ = reg.RegisterCallback(dialog.KeyHotel, h.onHotelChoice)
	_ = reg.RegisterCallback(dialog.KeyPhotos, h.onPhotosRequest)
	_ = reg.RegisterCallback(dialog.KeyHistory, h.onHistoryCallback)
	_ = reg.RegisterCallback(dialog.KeyCal, h.onCalendar)

	state.RegisterHandler(state.State(dialog.StepCity), h.textStep(h.machine.SubmitCity))
	state.RegisterHandler(state.State(dialog.StepHotelCount), h.textStep(h.machine.SubmitHotelCount))
	state.RegisterHandler(state.State(dialog.StepDistance), h.textStep(h.machine.SubmitDistance))
	state.RegisterHandler(state.State(dialog.StepPriceCeiling), h.textStep(h.machine.SubmitPriceCeiling))
	state.RegisterHandler(state.State(dialog.StepPersons), h.textStep(h.machine.SubmitPersons))
	state.RegisterHandler(state.State(dialog.StepPhotoCount), h.onPhotoCountText)
}

// UnknownText is the fallback for stray text outside any chain.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return h.onUnknownText
}

// UnknownDocument answers attachments the conversation never asks for.
func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return h.onUnknownText
}

// UnknownCallback answers callbacks from stale keyboards.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела"})
	}
}

// Registered commands reach their endpoints directly, so every command
// handler drops a running chain itself; the text-step interceptor only
// covers commands Telegram has no endpoint for.
func (h *Handlers) onStart(c tele.Context) error {
	h.resetChain(tghelpers.BuildContext(c), c)
	return h.render(c, h.machine.Start())
}

func (h *Handlers) onHelp(c tele.Context) error {
	h.resetChain(tghelpers.BuildContext(c), c)
	return h.render(c, h.machine.Help())
}

func (h *Handlers) searchCommand(kind storage.Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		h.resetChain(ctx, c)
		return h.render(c, h.machine.StartSearch(ctx, c.Chat().ID, kind))
	}
}

func (h *Handlers) onHistory(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	h.resetChain(ctx, c)
	return h.render(c, h.machine.ShowHistory(ctx, c.Chat().ID))
}

func (h *Handlers) onUnknownText(c tele.Context) error {
	return h.render(c, h.machine.Unknown())
}

// textStep adapts a machine text handler to a Telegram handler. A
// command typed mid-chain interrupts it: the chain is abandoned and the
// command routed as if the chat were idle.
func (h *Handlers) textStep(fn func(ctx context.Context, chatID int64, text string) dialog.Result) tele.HandlerFunc {
	return func(c tele.Context) error {
		if interrupted, err := h.interceptCommand(c); interrupted {
			return err
		}
		ctx := tghelpers.BuildContext(c)
		return h.render(c, fn(ctx, c.Chat().ID, c.Text()))
	}
}

func (h *Handlers) onPhotoCountText(c tele.Context) error {
	if interrupted, err := h.interceptCommand(c); interrupted {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	hotelID := ""
	if v, ok := h.fsm.GetTemp(c.Sender().ID, tempPhotoHotel); ok {
		hotelID, _ = v.(string)
	}
	res := h.machine.SubmitPhotoCount(ctx, c.Chat().ID, hotelID, c.Text())
	if res.Next == dialog.StepNone {
		h.fsm.ClearTemp(c.Sender().ID, tempPhotoHotel)
	}
	return h.render(c, res)
}

// interceptCommand aborts the running chain when the incoming text is a
// command. Registered commands restart routing from the top; anything
// else gets the unknown-command reply.
func (h *Handlers) interceptCommand(c tele.Context) (bool, error) {
	text := c.Text()
	if !strings.HasPrefix(text, "/") {
		return false, nil
	}
	ctx := tghelpers.BuildContext(c)
	h.resetChain(ctx, c)
	if h.reg != nil {
		if _, cmd, ok := h.reg.LookupCommand(text); ok && cmd.Handler != nil {
			return true, cmd.Handler(c)
		}
	}
	return true, h.render(c, h.machine.Unknown())
}

// resetChain drops the in-memory step and marks the active session row
// aborted.
func (h *Handlers) resetChain(ctx context.Context, c tele.Context) {
	h.fsm.ClearState(c.Sender().ID)
	h.fsm.ClearTemp(c.Sender().ID, tempPhotoHotel)
	h.machine.Abandon(ctx, c.Chat().ID)
}

func (h *Handlers) onLocale(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	locale := callbacks.CallbackPayload(c)
	return h.render(c, h.machine.ChooseLanguage(ctx, c.Chat().ID, locale))
}

func (h *Handlers) onCityChoice(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	destinationID := callbacks.CallbackPayload(c)
	return h.render(c, h.machine.ChooseLocation(ctx, c.Chat().ID, destinationID))
}

func (h *Handlers) onHotelChoice(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	hotelID := callbacks.CallbackPayload(c)
	return h.render(c, h.machine.ChooseHotel(ctx, c.Chat().ID, hotelID))
}

func (h *Handlers) onPhotosRequest(c tele.Context) error {
	hotelID := callbacks.CallbackPayload(c)
	h.fsm.SetTemp(c.Sender().ID, tempPhotoHotel, hotelID)
	return h.render(c, h.machine.RequestPhotoCount())
}

func (h *Handlers) onHistoryCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.render(c, h.machine.ShowHistory(ctx, c.Chat().ID))
}

func (h *Handlers) onCalendar(c tele.Context) error {
	name, action, year, month, day, err := parseCalendarPayload(callbacks.CallbackPayload(c))
	if err != nil {
		return nil
	}
	switch action {
	case calActionDay:
		ctx := tghelpers.BuildContext(c)
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		return h.render(c, h.machine.PickDate(ctx, c.Chat().ID, name, date))
	case calActionNext:
		y, m := shiftMonth(year, month, true)
		return c.Edit(dialog.CalendarTitle(name), calendarMarkup(name, y, m))
	case calActionPrev:
		y, m := shiftMonth(year, month, false)
		return c.Edit(dialog.CalendarTitle(name), calendarMarkup(name, y, m))
	}
	return nil
}
