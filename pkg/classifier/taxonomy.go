package classifier

// Category is one taxonomy label with the phrases that define its centroid.
type Category struct {
	Name      string
	Exemplars []string
}

// Taxonomy lists the programme categories in scoring order.
var Taxonomy = []Category{
	{
		Name:      "Accounting & Finance",
		Exemplars: []string{
			"financial reporting and analysis",
			"corporate finance strategy",
			"budgeting and forecasting",
			"risk management in banking",
			"investment portfolio management",
			"audit and compliance",
			"CFO leadership",
			"treasury management",
			"mergers and acquisitions valuation",
			"financial modelling",
			"capital markets",
			"cost accounting",
		},
	},
	{
		Name:      "Digital Transformation and AI",
		Exemplars: []string{
			"digital transformation strategy",
			"AI implementation in business",
			"machine learning for enterprise",
			"data-driven decision making",
			"technology leadership",
			"digital innovation",
			"automation and process optimization",
			"cloud migration strategy",
			"cybersecurity management",
			"digital product development",
			"tech startup scaling",
			"AI governance",
		},
	},
	{
		Name:      "Entrepreneurship",
		Exemplars: []string{
			"launching a startup",
			"venture capital fundraising",
			"business model innovation",
			"scaling a new venture",
			"entrepreneurial mindset",
			"lean startup methodology",
			"founder leadership",
			"growth hacking strategies",
			"building an MVP",
			"social entrepreneurship",
			"family business succession",
			"corporate entrepreneurship",
		},
	},
	{
		Name:      "General Management",
		Exemplars: []string{
			"executive leadership development",
			"general management skills",
			"cross-functional leadership",
			"business administration",
			"corporate governance",
			"organisational management",
			"executive MBA preparation",
			"senior management transition",
			"business strategy execution",
			"C-suite readiness",
			"multi-unit management",
			"international business management",
		},
	},
	{
		Name:      "Healthcare Management",
		Exemplars: []string{
			"hospital administration",
			"healthcare policy",
			"pharmaceutical management",
			"health system transformation",
			"clinical leadership",
			"patient care quality improvement",
			"health tech innovation",
			"medical device commercialisation",
			"public health strategy",
			"healthcare operations",
			"nursing leadership",
			"biotech management",
		},
	},
	{
		Name:      "Human Resource Management",
		Exemplars: []string{
			"talent acquisition strategy",
			"employee engagement",
			"compensation and benefits design",
			"HR digital transformation",
			"workforce planning",
			"diversity and inclusion programs",
			"organisational development",
			"HR analytics",
			"labour relations",
			"learning and development strategy",
			"employer branding",
			"succession planning",
		},
	},
	{
		Name:      "Innovation Management",
		Exemplars: []string{
			"product innovation strategy",
			"design thinking",
			"R&D management",
			"open innovation",
			"innovation culture building",
			"technology transfer",
			"creative problem solving",
			"disruptive innovation",
			"innovation portfolio management",
			"intrapreneurship",
			"commercialising research",
			"innovation ecosystems",
		},
	},
	{
		Name:      "Marketing & Sales",
		Exemplars: []string{
			"brand strategy and management",
			"digital marketing campaigns",
			"B2B sales leadership",
			"customer experience optimisation",
			"marketing analytics",
			"content marketing strategy",
			"sales team management",
			"go-to-market strategy",
			"consumer behaviour insights",
			"pricing strategy",
			"key account management",
			"omnichannel marketing",
		},
	},
	{
		Name:      "Operations & Supply Chain Management",
		Exemplars: []string{
			"supply chain optimisation",
			"lean manufacturing",
			"logistics management",
			"procurement strategy",
			"quality management systems",
			"operations excellence",
			"inventory management",
			"production planning",
			"global supply chain resilience",
			"warehouse automation",
			"Six Sigma",
			"demand forecasting",
		},
	},
	{
		Name:      "People Management & Leadership",
		Exemplars: []string{
			"team leadership development",
			"executive coaching skills",
			"conflict resolution",
			"performance management",
			"leadership communication",
			"change management",
			"emotional intelligence in leadership",
			"cross-cultural team management",
			"coaching and mentoring",
			"servant leadership",
			"leading remote teams",
			"stakeholder management",
		},
	},
	{
		Name:      "Strategy",
		Exemplars: []string{
			"corporate strategy development",
			"competitive analysis",
			"strategic planning",
			"market entry strategy",
			"business transformation",
			"strategic partnerships",
			"scenario planning",
			"portfolio strategy",
			"strategic decision making",
			"industry disruption analysis",
			"growth strategy",
			"strategic consulting",
		},
	},
	{
		Name:      "Sustainability",
		Exemplars: []string{
			"ESG strategy and reporting",
			"sustainable business models",
			"circular economy",
			"carbon footprint reduction",
			"corporate social responsibility",
			"sustainable supply chains",
			"green finance",
			"climate risk management",
			"sustainability leadership",
			"impact investing",
			"environmental compliance",
			"net zero strategy",
		},
	},
}
