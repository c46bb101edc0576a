package bot

// Localizer resolves message and button texts for the configured language.
type Localizer struct {
	lang string
}

// NewLocalizer creates a localizer for "ru" or "en".
func NewLocalizer(lang string) *Localizer {
	return &Localizer{lang: lang}
}

// Message returns the localized message for a key, or an empty-message
// placeholder when the key is unknown.
func (l *Localizer) Message(key string) string {
	if msgs, ok := messages[l.lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	return "Empty message"
}

// Button returns the localized label for a button key.
func (l *Localizer) Button(key string) string {
	if btns, ok := buttons[l.lang]; ok {
		if b, ok := btns[key]; ok {
			return b
		}
	}
	return key
}

// QuickComments returns the one-tap explanations offered for a zero-ticket
// outcome.
func (l *Localizer) QuickComments() []string {
	return quickComments[l.lang]
}

var messages = map[string]map[string]string{
	"ru": {
		"hello":            "Привет",
		"count_tickets":    "Введи кол-во оценённых тикетов:",
		"comment":          "⚠Напишите комментарий к агенту⚠:",
		"waiting":          "⏱Пожалуйста подождите.....",
		"count_rec":        "Количество записано✅",
		"error_int":        "Ответ должно содержать целое число!!!",
		"comment_rec":      "Комментарий записан✅",
		"change_count":     "Ведите кол-во тикетов для исправления",
		"info_old_task":    "Задача устарела. Обратись к РГ для исправления👨🏾‍🦳",
		"waiting_change":   "Вычисляю...🤖",
		"info_empty_entry": "Не удалось найти запись в таблице. Обратитесь к РГ",
		"info_error_entry": "При записи возникла ошибка. Попробуйте еще раз немного позднее",
		"success_change":   "Изменения успешно внесены✅",
		"reset_change":     "Изменения отменены🙅",
		"no_task":          "Нет активных задач по навыку %s(",
		"no_skill":         "Проблемы с навыком, обратись к рг(",
		"unloading_wait":   "⏱Выгрузка. Пожалуйста подождите.....",
		"success_unloading": "Выгрузка обновлена✅",
		"unloading_busy":   "Выгрузка уже выполняется, подождите",
		"send_login":       "Отправь мне список логинов в формате:\ntest\ntest2\ntest3",
		"result_prior":     "Результаты обновления приоритета:",
		"update_db":        "База данных обновлена✅",
		"update_db_root":   "База данных Администраторов обновлена✅",
		"update_skills":    "Навыки обновлены✅",
	},
	"en": {
		"hello":            "Hi",
		"count_tickets":    "Enter the number of assessed tickets:",
		"comment":          "⚠Write a comment to the agent⚠:",
		"waiting":          "⏱Please wait.....",
		"count_rec":        "Count recorded✅",
		"error_int":        "Response must contain an integer!!!",
		"comment_rec":      "Comment recorded✅",
		"change_count":     "Enter the number of tickets to correct",
		"info_old_task":    "The task is outdated. Contact RG for correction👨🏾‍🦳",
		"waiting_change":   "Calculating...🤖",
		"info_empty_entry": "No entry found in the table. Contact RG",
		"info_error_entry": "An error occurred while writing. Please try again later",
		"success_change":   "Changes successfully made✅",
		"reset_change":     "Changes canceled🙅",
		"no_task":          "No active tasks for skill %s(",
		"no_skill":         "Problems with your skills, contact RG(",
		"unloading_wait":   "⏱Unloading. Please wait.....",
		"success_unloading": "Unloading updated✅",
		"unloading_busy":   "A resync is already running, please wait",
		"send_login":       "Send me a list of logins in the format:\ntest\ntest2\ntest3",
		"result_prior":     "Priority update results:",
		"update_db":        "Database updated✅",
		"update_db_root":   "Administrators database updated✅",
		"update_skills":    "Skills updated✅",
	},
}

var buttons = map[string]map[string]string{
	"ru": {
		"get_task":      "Получить задание",
		"cancel":        "Отмена",
		"change":        "Изменить",
		"update_skills": "Обновить навыки",
		"update_admins": "Обновить админов",
		"update_users":  "Обновить аудиторов",
		"list_users":    "Список аудиторов",
		"priority":      "Приоритет",
		"unload":        "Выгрузка",
		"logs":          "Логи",
	},
	"en": {
		"get_task":      "Get Task",
		"cancel":        "Cancel",
		"change":        "Change",
		"update_skills": "Update Skills",
		"update_admins": "Update Admins",
		"update_users":  "Update Auditors",
		"list_users":    "List of Auditors",
		"priority":      "Priority",
		"unload":        "Unload",
		"logs":          "Logs",
	},
}

var quickComments = map[string][]string{
	"ru": {"нет тикетов", "нет смен", "уволен", "больничный", "отпуск/обс"},
	"en": {"No Tickets", "No Shifts", "Fired", "Sick Leave", "Vacation/OBS"},
}
