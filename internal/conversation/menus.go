package conversation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Action tokens carried by buttons.
const (
	ActionBrowse        = "browse"
	ActionHelp          = "help"
	ActionCartView      = "cart:view"
	ActionCartRemoveTop = "cart:rm0"
	ActionCartEmpty     = "cart:empty"
	ActionCheckoutStart = "checkout:start"
	ActionAskPhoto      = "custom:askphoto"

	prefixCategory     = "cat:"
	prefixAdd          = "add:"
	prefixColor        = "color:"
	prefixColors       = "colors:"
	prefixConfirmColor = "confirm_color:"
	prefixPayPalHowTo  = "paypal:howto:"
)

const (
	textChooseCategory = "Choisis une catégorie :"
	textBackToCatalog  = "⬅️ Retour au catalogue"
	textNeedHelp       = "🆘 Besoin d’aide"
	textSizePrompt     = "✍️ *Étape 1/1* - Écris ta *taille* (ex: `42 EU`, `27.5`, `M`, etc.) :"
	textOrBack         = "Ou reviens au catalogue :"
	textNamePrompt     = "🧾 *Étape 1/3* - Indique ton *nom complet* :"
	textPhonePrompt    = "☎️ *Étape 2/3* - Partage ton *numéro* (bouton ci-dessous) ou écris-le :"
	textPhoneInvalid   = "Merci d'envoyer un *numéro de téléphone* valide ou d'utiliser le bouton ci-dessous."
	textAddressPrompt  = "🏠 *Étape 3/3* - Envoie maintenant ton *adresse complète* :"
	textCartEmpty      = "Ton panier est vide."
	textCheckoutBusy   = "Tu as une commande en cours. Termine-la d’abord (réponds à la dernière question), puis ajoute d’autres articles."
	textProductMissing = "Produit introuvable"
	textNoColors       = "Aucun coloris disponible."
	textNoProducts     = "Aucun produit."
	textCatalogDown    = "Le catalogue est momentanément indisponible, réessaie dans un instant."
	textOrderFailed    = "⚠️ Impossible d'enregistrer ta commande pour le moment. Renvoie ton adresse pour réessayer."
	textOrderRejected  = "⚠️ Ta commande n'a pas pu être enregistrée. Contacte-nous pour la finaliser."
	textThanks         = "Merci pour ta commande !"
	textWhatNext       = "Que souhaites-tu faire ?"
	textOperatorHello  = "✅ Admin reconnu : vous recevrez les notifications en MP."
	textFreeText       = "Besoin d’aide ? /help\n\n• /catalogue - Catégories\n• /panier - Voir le panier\n• /commander - Finaliser"
	textHelp           = "🆘 *Besoin d’aide ?* Contacte-nous en MP."
	textHelpUnset      = "\n\n(Configure `ADMIN_USERNAME` ou `SUPPORT_URL`.)"
	textOperatorsDown  = "ℹ️ Note : je n’ai pas pu notifier l’admin en MP. Il devra *démarrer le bot* et vérifier `ADMINS`."
	textPhoneButton    = "📞 Envoyer mon numéro"
	textPhoneHint      = "Ex: 06 12 34 56 78"

	textWelcome = "👟 *Bienvenue à L’atelier de la chaussure !*\n\n" +
		"🛍️ Feuillette le catalogue et passe commande directement ici.\n" +
		"🚚 *Expédition* : entre *10 et 15 jours* après confirmation.\n" +
		"📸 Tu peux aussi envoyer *en privé* la *photo d’un modèle* + ta *taille* à un conseiller.\n\n" +
		"Commandes utiles :\n" +
		"• /catalogue - Voir les catégories\n" +
		"• /panier - Voir le panier\n" +
		"• /commander - Finaliser la commande\n" +
		"• /help - Contacter un conseiller"

	textAskPhoto = "📩 Ouvre notre *conversation privée*, puis envoie *la photo du modèle* + ta *taille*.\n" +
		"Tu peux cliquer sur *Message pré-rempli* pour aller plus vite."

	textPhotoThanks = "🙏 Merci pour la photo ! Pour un traitement rapide, *ouvre notre MP* et renvoie *la photo du modèle* avec ta *taille*.\n" +
		"Utilise le *message pré-rempli* pour gagner du temps."
)

func (e *Engine) supportURL() string {
	if e.opts.SupportURL != "" {
		return e.opts.SupportURL
	}
	if e.opts.AdminUsername != "" {
		return "https://t.me/" + e.opts.AdminUsername
	}
	for _, id := range e.opts.Operators {
		if id > 0 {
			return "tg://user?id=" + strconv.FormatInt(id, 10)
		}
	}
	return ""
}

func (e *Engine) supportRow() []Button {
	if u := e.supportURL(); u != "" {
		return []Button{{Text: textNeedHelp, URL: u}}
	}
	return []Button{{Text: textNeedHelp, Action: ActionHelp}}
}

func (e *Engine) backKeyboard() Keyboard {
	return Keyboard{{{Text: textBackToCatalog, Action: ActionBrowse}}, e.supportRow()}
}

func (e *Engine) shortBackKeyboard() Keyboard {
	return Keyboard{{{Text: "⬅️ Catalogue", Action: ActionBrowse}}, e.supportRow()}
}

func (e *Engine) categoryKeyboard(categories []string) Keyboard {
	kb := Keyboard{}
	for _, c := range categories {
		kb = append(kb, []Button{{Text: c, Action: categoryAction(c, 0)}})
	}
	kb = append(kb,
		[]Button{{Text: "Tout voir", Action: categoryAction("", 0)}},
		[]Button{{Text: "📦 Panier", Action: ActionCartView}},
		[]Button{{Text: "📸 Envoyer une photo de modèle", Action: ActionAskPhoto}},
		e.supportRow(),
	)
	return kb
}

func (e *Engine) postAddKeyboard() Keyboard {
	return Keyboard{
		{{Text: "➕ Continuer les achats", Action: ActionBrowse}},
		{{Text: "📦 Voir panier", Action: ActionCartView}, {Text: "✅ Commander", Action: ActionCheckoutStart}},
		e.supportRow(),
	}
}

func (e *Engine) colorsKeyboard(productID int64, colors []string) Keyboard {
	kb := Keyboard{}
	for _, c := range colors {
		kb = append(kb, []Button{{Text: c, Action: colorAction(prefixColor, productID, c)}})
	}
	return append(kb, []Button{{Text: textBackToCatalog, Action: ActionBrowse}}, e.supportRow())
}

func (e *Engine) shareKeyboard(user User) Keyboard {
	kb := Keyboard{}
	if u := e.supportURL(); u != "" {
		kb = append(kb, []Button{{Text: "👤 Ouvrir MP avec un conseiller", URL: u}})
	}
	return append(kb,
		[]Button{{Text: "📝 Message pré-rempli", URL: prefilledShareLink(user)}},
		[]Button{{Text: textBackToCatalog, Action: ActionBrowse}},
		e.supportRow(),
	)
}

func (e *Engine) paymentKeyboard(orderID int64, paymentURL string) Keyboard {
	if paymentURL == "" {
		return Keyboard{
			{{Text: "⚙️ Configurer PAYPAL_ME", URL: "https://www.paypal.me/"}},
			e.supportRow(),
		}
	}
	return Keyboard{
		{{Text: "💸 Payer via PayPal (entre proches)", URL: paymentURL}},
		{{Text: "ℹ️ Comment faire ?", Action: prefixPayPalHowTo + strconv.FormatInt(orderID, 10)}},
		e.supportRow(),
	}
}

func phoneRequest() *ContactRequest {
	return &ContactRequest{Label: textPhoneButton, Placeholder: textPhoneHint}
}

func categoryAction(category string, offset int) string {
	return fmt.Sprintf("%s%s:%d", prefixCategory, url.QueryEscape(category), offset)
}

func colorAction(prefix string, productID int64, color string) string {
	return fmt.Sprintf("%s%d:%s", prefix, productID, url.QueryEscape(color))
}

func prefilledShareLink(u User) string {
	txt := "Demande modèle (via le bot):\n" +
		"Utilisateur: " + u.Display() + "\n" +
		"Modèle souhaité: (décris le modèle ici)\n" +
		"Taille souhaitée: ____\n" +
		"Ajoute la photo du modèle en pièce jointe."
	return "https://t.me/share/url?url=&text=" + strings.ReplaceAll(url.QueryEscape(txt), "+", "%20")
}

func payPalHowTo(orderID string) string {
	return "📝 *Payer via PayPal « entre proches »*\n" +
		"1) Ouvre le lien PayPal.me.\n" +
		"2) Connecte-toi si besoin.\n" +
		"3) Si l’option apparaît, choisis *Entre proches* (elle peut varier selon pays/type de compte).\n" +
		"4) Dans la *note*, indique: `Commande #" + orderID + "`.\n\n" +
		"⚠️ L’option « entre proches » n’est pas disponible partout et enlève la protection d’achat."
}
