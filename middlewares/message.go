package middlewares

var Responses = struct {
	FailedValidations   *NewRM
	InternalServerError *NewRM
	Unauthenticated     *NewRM
	UserNotFound        *NewRM
	InvalidRoles        *NewRM
	ArtworkNotFound     *NewRM
	OrderNotFound       *NewRM
	PaymentProblems     *NewRM
}{
	FailedValidations: &NewRM{
		Language.English: "Failed field validations",
		Language.Swedish: "Fältvalideringen misslyckades",
	},
	InternalServerError: &NewRM{
		Language.English: "Internal server error",
		Language.Swedish: "Problem med servern",
	},
	Unauthenticated: &NewRM{
		Language.English: "Please sign in",
		Language.Swedish: "Logga in för att fortsätta",
	},
	UserNotFound: &NewRM{
		Language.English: "User not found",
		Language.Swedish: "Användaren hittades inte",
	},
	InvalidRoles: &NewRM{
		Language.English: "Invalid roles",
		Language.Swedish: "Du har inte behörighet för den här åtgärden",
	},
	ArtworkNotFound: &NewRM{
		Language.English: "Artwork not found",
		Language.Swedish: "Konstverket hittades inte",
	},
	OrderNotFound: &NewRM{
		Language.English: "Order not found",
		Language.Swedish: "Beställningen hittades inte",
	},
	PaymentProblems: &NewRM{
		Language.English: "Problems with the payment provider",
		Language.Swedish: "Problem med betalningsleverantören",
	},
}

type NewRM map[string]string

var Language = struct {
	English string
	Swedish string
}{
	English: "en",
	Swedish: "sv",
}

var LanguageMap = map[string]string{
	Language.Swedish: "Swedish",
	Language.English: "English",
}
