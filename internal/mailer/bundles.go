package mailer

type phrases struct {
	Subject string
	Heading string
	Body    string
}

type bundle struct {
	Greeting  string
	Footer    string
	Statuses  map[string]string
	Templates map[Template]phrases
}

var bundles = map[string]bundle{
	"en": {
		Greeting: "{{if .CustomerName}}Hello {{.CustomerName}},{{else}}Hello,{{end}}",
		Footer:   "Thank you for ordering with gofood.",
		Statuses: map[string]string{
			"pending":    "pending",
			"preparing":  "being prepared",
			"assigned":   "assigned to a driver",
			"in_transit": "on its way",
			"delivered":  "delivered",
			"cancelled":  "cancelled",
		},
		Templates: map[Template]phrases{
			TemplateOrderPlaced: {
				Subject: "Order {{.OrderNumber}} received",
				Heading: "Thank you for your order!",
				Body:    "We have received your order {{.OrderNumber}} with a total of {{.Total}}. We will let you know as soon as it is on its way.",
			},
			TemplateOrderStatus: {
				Subject: "Order {{.OrderNumber}}: {{.StatusLabel}}",
				Heading: "Your order has an update",
				Body:    "Your order {{.OrderNumber}} is now {{.StatusLabel}}.",
			},
		},
	},
	"de": {
		Greeting: "{{if .CustomerName}}Hallo {{.CustomerName}},{{else}}Hallo,{{end}}",
		Footer:   "Vielen Dank für Ihre Bestellung bei gofood.",
		Statuses: map[string]string{
			"pending":    "ausstehend",
			"preparing":  "in Zubereitung",
			"assigned":   "einem Fahrer zugewiesen",
			"in_transit": "unterwegs",
			"delivered":  "zugestellt",
			"cancelled":  "storniert",
		},
		Templates: map[Template]phrases{
			TemplateOrderPlaced: {
				Subject: "Bestellung {{.OrderNumber}} eingegangen",
				Heading: "Vielen Dank für Ihre Bestellung!",
				Body:    "Wir haben Ihre Bestellung {{.OrderNumber}} über {{.Total}} erhalten. Wir melden uns, sobald sie unterwegs ist.",
			},
			TemplateOrderStatus: {
				Subject: "Bestellung {{.OrderNumber}}: {{.StatusLabel}}",
				Heading: "Neuigkeiten zu Ihrer Bestellung",
				Body:    "Ihre Bestellung {{.OrderNumber}} ist jetzt {{.StatusLabel}}.",
			},
		},
	},
	"fr": {
		Greeting: "{{if .CustomerName}}Bonjour {{.CustomerName}},{{else}}Bonjour,{{end}}",
		Footer:   "Merci d'avoir commandé avec gofood.",
		Statuses: map[string]string{
			"pending":    "en attente",
			"preparing":  "en préparation",
			"assigned":   "attribuée à un livreur",
			"in_transit": "en route",
			"delivered":  "livrée",
			"cancelled":  "annulée",
		},
		Templates: map[Template]phrases{
			TemplateOrderPlaced: {
				Subject: "Commande {{.OrderNumber}} reçue",
				Heading: "Merci pour votre commande !",
				Body:    "Nous avons bien reçu votre commande {{.OrderNumber}} d'un montant de {{.Total}}. Nous vous préviendrons dès qu'elle sera en route.",
			},
			TemplateOrderStatus: {
				Subject: "Commande {{.OrderNumber}} : {{.StatusLabel}}",
				Heading: "Du nouveau pour votre commande",
				Body:    "Votre commande {{.OrderNumber}} est maintenant {{.StatusLabel}}.",
			},
		},
	},
	"it": {
		Greeting: "{{if .CustomerName}}Ciao {{.CustomerName}},{{else}}Ciao,{{end}}",
		Footer:   "Grazie per aver ordinato con gofood.",
		Statuses: map[string]string{
			"pending":    "in attesa",
			"preparing":  "in preparazione",
			"assigned":   "assegnato a un corriere",
			"in_transit": "in consegna",
			"delivered":  "consegnato",
			"cancelled":  "annullato",
		},
		Templates: map[Template]phrases{
			TemplateOrderPlaced: {
				Subject: "Ordine {{.OrderNumber}} ricevuto",
				Heading: "Grazie per il tuo ordine!",
				Body:    "Abbiamo ricevuto il tuo ordine {{.OrderNumber}} per un totale di {{.Total}}. Ti avviseremo appena sarà in consegna.",
			},
			TemplateOrderStatus: {
				Subject: "Ordine {{.OrderNumber}}: {{.StatusLabel}}",
				Heading: "Aggiornamento sul tuo ordine",
				Body:    "Il tuo ordine {{.OrderNumber}} è ora {{.StatusLabel}}.",
			},
		},
	},
}
