package dialog

import "github.com/m3rciful/hotelbot/internal/storage"

// User-facing texts. The bot talks Russian regardless of the search
// locale; the locale only controls the upstream query language.
const (
	msgHelp = "Давайте подберем вам подходящий отель. Для этого используйте следующие команды:\n" +
		"'/lowprice' - самые дешевые отели в городе\n" +
		"'/highprice' - самые дорогие отели в городе\n" +
		"'/bestdeal' - лучшее предложение по цене и расстоянию до центра\n" +
		"'/history' - Просмотр результатов последнего запроса"
	msgStart = "Этот бот предназначен для поиска отелей в различных городах.\n" +
		"Для помощи по командам наберите /help"
	msgUnknownCommand = "К сожалению, эта команда мне непонятна.\nПопробуйте еще раз.\n" +
		"Для помощи, введите /help"

	msgAskLocale       = "На каком языке будем искать?"
	msgAskCity         = "В каком городе ищем отели? "
	msgCityNotFound    = "Ничего не найдено\nПопробуйте ввести название более точно:"
	msgCityAmbiguous   = "Найдено несколько городов. Выберите подходящий:"
	msgAskHotelCount   = "Введите количество отелей для поиска.\nЗамечу, что я могу найти не более 25 отелей."
	msgBadInput        = "Неправильный ввод, попробуйте еще раз"
	msgBadHotelCount   = "Похоже, вы ввели неправильное количество отелей. Попробуйте снова."
	msgAskDistance     = "Какое должно быть максимальное расстояние от отеля до центра города?"
	msgBadDistance     = "Неправильный ввод. Какое должно быть максимальное расстояние от отеля до центра города?"
	msgAskMaxPrice     = "Какова должна быть максимальная стоимость суток проживания?"
	msgBadMaxPrice     = "Неправильный ввод. Какова должна быть максимальная стоимость суток проживания?"
	msgAskPersons      = "Сколько человек планирует проживать в отеле?"
	msgAskCheckIn      = "Выберите дату заезда"
	msgAskCheckOut     = "Выберите дату выезда"
	msgCheckInPast     = "Дата въезда указана ранее текущей даты."
	msgCheckOutEarly   = "Дата выезда указана ранее даты въезда."
	msgDateRetry       = "Неправильный ввод, пожалуйста, повторите"
	msgSearching       = "Веду поиск, пожалуйста, подождите...⏱"
	msgHotelsFound     = "Отели найдены. Выберите подходящий:"
	msgNothingFound    = "К сожалению, ни одного отеля не найдено"
	msgChooseAction    = "Выберите действие: "
	msgAskPhotoCount   = "Сколько изображений вывести?\nЗамечу, что я могу вывести не более 10 изображений."
	msgBadPhotoCount   = "Неправильный ввод. \nСколько изображений вывести?\nЗамечу, что я могу вывести не более 10 изображений."
	msgHistoryEmpty    = "История запросов пуста. Начните поиск командой /lowprice, /highprice или /bestdeal."
	msgHistoryResults  = "Результаты последнего запроса:"
	msgPhotosShowLast  = "Показать последний запрос"
	msgHotelShowPhotos = "Изображения отеля"
)

// CalendarTitle returns the prompt shown above the named calendar, so
// the transport layer can re-render it when the user pages months.
func CalendarTitle(name string) string {
	if name == CalendarCheckOut {
		return msgAskCheckOut
	}
	return msgAskCheckIn
}

// kindIntro is sent right after the city is fixed, before the count
// prompt.
var kindIntro = map[storage.Kind]string{
	storage.KindLowPrice:  "Ищем отели с демократическими ценами.",
	storage.KindHighPrice: "Ищем отели с максимальной стоимостью.",
	storage.KindBestDeal:  "Ищем отели по соотношению цены и расстояния до центра города",
}
