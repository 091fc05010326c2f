package template

type sectionTemplate struct {
	kind    string
	heading string
	body    string
}

type pageTemplate struct {
	id       string
	path     string
	title    string
	seoTitle string
	sections []sectionTemplate
}

type siteTemplate struct {
	defaultTagline  string
	defaultIndustry string
	pages           []pageTemplate
}

var catalog = map[Kind]siteTemplate{
	KindService: {
		defaultTagline:  "Quality work you can rely on.",
		defaultIndustry: "Professional Services",
		pages: []pageTemplate{
			{
				id: "home", path: "/", title: "{name}",
				seoTitle: "{name} | {industry}",
				sections: []sectionTemplate{
					{kind: "hero", heading: "Welcome to {name}", body: "Your trusted partner for {industry}."},
					{kind: "cta", heading: "Get in touch", body: "Request a free quote today."},
				},
			},
			{
				id: "about", path: "/about", title: "About {name}",
				seoTitle: "About {name}",
				sections: []sectionTemplate{
					{kind: "text", heading: "Who we are", body: "{name} has been serving its customers with pride."},
				},
			},
			{
				id: "services", path: "/services", title: "Services",
				seoTitle: "Services | {name}",
				sections: []sectionTemplate{
					{kind: "list", heading: "What we offer", body: "A full range of {industry} services."},
				},
			},
			{
				id: "contact", path: "/contact", title: "Contact",
				seoTitle: "Contact {name}",
				sections: []sectionTemplate{
					{kind: "contact", heading: "Contact us", body: "We respond within one business day."},
				},
			},
		},
	},
	KindProduct: {
		defaultTagline:  "Products made to last.",
		defaultIndustry: "Retail",
		pages: []pageTemplate{
			{
				id: "home", path: "/", title: "{name}",
				seoTitle: "{name} | {industry}",
				sections: []sectionTemplate{
					{kind: "hero", heading: "Discover {name}", body: "Quality {industry} products."},
					{kind: "featured", heading: "Featured products", body: "Hand-picked favorites."},
				},
			},
			{
				id: "products", path: "/products", title: "Products",
				seoTitle: "Products | {name}",
				sections: []sectionTemplate{
					{kind: "grid", heading: "Our catalog", body: "Browse the full range."},
				},
			},
			{
				id: "about", path: "/about", title: "About {name}",
				seoTitle: "About {name}",
				sections: []sectionTemplate{
					{kind: "text", heading: "Our story", body: "How {name} came to be."},
				},
			},
			{
				id: "contact", path: "/contact", title: "Contact",
				seoTitle: "Contact {name}",
				sections: []sectionTemplate{
					{kind: "contact", heading: "Contact us", body: "Questions about an order? Write to us."},
				},
			},
		},
	},
}
