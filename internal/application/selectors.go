package application

// TextTarget matches elements selected by Selector whose visible text contains
// one of Phrases, compared case-insensitively. An empty phrase list matches any element.
type TextTarget struct {
	Selector string
	Phrases  []string
}

// LoginSelectors is the ordered strategy data used by the login flow.
type LoginSelectors struct {
	ConsentButtons     []TextTarget
	UsernameInputs     []string
	PasswordInputs     []string
	SubmitButtons      []TextTarget
	DismissModals      []TextTarget
	AlertContainers    []string
	WrongPassword      []string
	SecondFactorInputs []string
	WrongCode          []string
	Landmark           string
	LandmarkHost       string
}

// CollectorSelectors is the ordered strategy data used by the collection flow.
type CollectorSelectors struct {
	ProfileHeader    string
	PrivateMarkers   []string
	NotFoundMarkers  []string
	FollowersLinks   []TextTarget
	FollowingLinks   []TextTarget
	Dialog           string
	ScrollContainers []string
	ListItems        []string
	ShowMoreButtons  []TextTarget
	TextStopWords    []string
	ReservedPaths    []string
}

const clickableSelector = "button, div[role='button'], a[role='button']"

func DefaultLoginSelectors() LoginSelectors {
	return LoginSelectors{
		ConsentButtons: []TextTarget{
			{Selector: clickableSelector, Phrases: []string{
				"Only allow essential cookies",
				"Only allow essential",
				"Allow all cookies",
				"Accept all",
				"Разрешить все куки",
				"Разрешить все cookie",
				"Только необходимые cookie",
				"Принять все",
			}},
			{Selector: "button", Phrases: []string{"Разрешить все", "Принять", "Accept", "Allow all"}},
		},
		UsernameInputs: []string{
			"input[name='username']",
			"input[aria-label='Phone number, username, or email']",
			"input[aria-label='Номер телефона, имя пользователя или эл. адрес']",
		},
		PasswordInputs: []string{
			"input[name='password']",
			"input[type='password']",
		},
		SubmitButtons: []TextTarget{
			{Selector: "button, div[role='button']", Phrases: []string{"Log in", "Войти"}},
			{Selector: "form button[type='submit']"},
		},
		DismissModals: []TextTarget{
			{Selector: clickableSelector, Phrases: []string{"Not now", "Не сейчас"}},
		},
		AlertContainers: []string{
			"div[role='alert']",
			"[aria-live='polite']",
			"[aria-live='assertive']",
			"form [id*='error']",
			"form [class*='error']",
		},
		WrongPassword: []string{
			"The password you entered is incorrect",
			"incorrect password",
			"Неверный пароль",
			"Пароль введен неверно",
			"вы ввели неправильный пароль",
		},
		SecondFactorInputs: []string{
			"input[name='verificationCode']",
			"input[aria-label='Security code']",
		},
		WrongCode: []string{
			"incorrect",
			"wasn't right",
			"Неверный",
		},
		Landmark:     "nav",
		LandmarkHost: "instagram.com",
	}
}

func DefaultCollectorSelectors() CollectorSelectors {
	return CollectorSelectors{
		ProfileHeader: "header",
		PrivateMarkers: []string{
			"This account is private",
			"Это закрытый аккаунт",
			"Закрытый аккаунт",
		},
		NotFoundMarkers: []string{
			"Sorry, this page isn't available",
			"Страница недоступна",
			"К сожалению, эта страница недоступна",
		},
		FollowersLinks: []TextTarget{
			{Selector: "a[href$='/followers/']"},
			{Selector: "a", Phrases: []string{"followers", "подписчик"}},
		},
		FollowingLinks: []TextTarget{
			{Selector: "a[href$='/following/']"},
			{Selector: "a", Phrases: []string{"following", "подписки"}},
		},
		Dialog: "div[role='dialog']",
		ScrollContainers: []string{
			"div._aano",
			"div[style*='overflow']",
		},
		ListItems: []string{"li", "div[role='listitem']", "a[href]"},
		ShowMoreButtons: []TextTarget{
			{Selector: clickableSelector, Phrases: []string{"Show more", "Load more", "Показать ещё", "Показать еще"}},
		},
		TextStopWords: []string{
			"follow", "following", "followers", "remove", "message", "verified", "requested",
			"подписаться", "подписки", "подписчики", "удалить", "сообщение", "запрос",
		},
		ReservedPaths: []string{
			"explore", "reel", "reels", "p", "tv", "stories", "accounts", "direct",
			"challenge", "about", "press", "developer", "legal", "privacy", "terms",
			"web", "api", "graphql", "emails", "session", "oauth", "static",
		},
	}
}
