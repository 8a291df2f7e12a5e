package application

import (
	"errors"
	"fmt"

	"github.com/bnema/followcheck/internal/domain"
)

const (
	msgGreeting = "Hi! I compare your followers and following lists.\n\n" +
		"/check - upload both lists yourself\n" +
		"/scrape <account> - collect both lists automatically\n" +
		"/help - all commands"
	msgHelp = "Commands:\n" +
		"/check - upload followers, then following (text or .txt file, one name per line)\n" +
		"/scrape <account> - collect lists using your session cookies\n" +
		"/login - sign in with username and password to get session cookies\n" +
		"/2fa <code> - send the two-factor code during /login\n" +
		"/why <account> - explain where an account ended up\n" +
		"/find <text> - search the last lists\n" +
		"/logout - forget stored session cookies\n" +
		"/start - reset the conversation"
	msgIdleGuidance     = "Start with /check to upload lists or /scrape <account> to collect them. /help lists all commands."
	msgIdleFile         = "I was not expecting a file. Start with /check or /scrape first."
	msgFileUnreadable   = "I couldn't download that file. Please send it again."
	msgUnknownCommand   = "Unknown command. /help lists what I understand."
	msgAskFollowers     = "Send the followers list: paste it or upload a .txt file, one name per line."
	msgEmptyList        = "That list has no usable account names. Send it again."
	msgAskUsername      = "Send the account username."
	msgAskPassword      = "Send the password. Both messages will be deleted."
	msgUsernameMissing  = "I don't have a username yet. Send the username first."
	msgInvalidUsername  = "That does not look like a valid username. Try again."
	msgEmptyPassword    = "The password is empty. Send it again."
	msgLoggingIn        = "Signing in, this can take a minute..."
	msgLoginOK          = "Signed in. Session cookies are saved; use /scrape <account>."
	msgLoginUnconfirmed = "Signed in, but I could not confirm it. Cookies are saved; if /scrape fails, run /login again."
	msgAsk2FA           = "A two-factor code is required. Send it with /2fa <code>."
	msg2FAUsage         = "Usage: /2fa <code>"
	msgNot2FA           = "I'm not expecting a two-factor code right now."
	msgAwait2FAText     = "Send the code with /2fa <code>, or /start to cancel."
	msg2FAOK            = "Code accepted. Session cookies are saved; use /scrape <account>."
	msg2FAWrong         = "The code was rejected. Start again with /login."
	msg2FATimeout       = "The two-factor step timed out. Start again with /login."
	msgWrongPassword    = "Wrong username or password. Send the username again."
	msgScrapeUsage      = "Usage: /scrape <account>"
	msgAskCookies       = "Send a cookies file (Netscape cookies.txt or name=value lines), or sign in with /login."
	msgCookiesText      = "Send the cookies as a file."
	msgCookieParse      = "I could not read any cookies from that file. Send another one."
	msgLoggedOut        = "Session cookies forgotten."
	msgWhyUsage         = "Usage: /why <account>"
	msgFindUsage        = "Usage: /find <text>"
	msgNoLists          = "No lists yet. Run /check or /scrape first."
	msgListInputText    = "Send the list as text or a .txt file."
)

func msgAskFollowing(followers int) string {
	return fmt.Sprintf("Got %s followers. Now send the following list.", domain.FormatCount(followers))
}

func msgCollecting(account domain.Identifier) string {
	return fmt.Sprintf("Collecting followers and following of @%s. Large accounts take several minutes...", account)
}

func msgLoginFailed(err error) string {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return "Sign-in failed. Try /login again later."
	}

	switch authErr.Reason {
	case domain.AuthTimeout:
		return "Sign-in timed out. Try /login again later."
	case domain.AuthUIElementMissing:
		return "The login page did not show the expected form. Try /login again later."
	default:
		return "Sign-in failed for an unknown reason. Try /login again later."
	}
}

func msgCollectionFailed(err error) string {
	var collErr *domain.CollectionError
	if !errors.As(err, &collErr) {
		return "Collection failed. Try again later."
	}

	switch collErr.Reason {
	case domain.CollectionPrivateAccount:
		return fmt.Sprintf("@%s is private. Collection needs an account that follows it.", collErr.Account)
	case domain.CollectionProfileNotFound:
		return fmt.Sprintf("@%s was not found.", collErr.Account)
	case domain.CollectionTimeout:
		return "Collection timed out. Try again later."
	default:
		return "Collection failed. Your cookies may have expired; send new ones or /login."
	}
}
