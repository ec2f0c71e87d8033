package seeder

import "proshop/internal/models"

type sampleUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

var sampleUsers = []sampleUser{
	{Name: "Admin User", Email: "admin@email.com", Password: "password123", Role: models.RoleAdmin},
	{Name: "John Doe", Email: "john@email.com", Password: "password123", Role: models.RoleUser},
	{Name: "Jane Doe", Email: "jane@email.com", Password: "password123", Role: models.RoleUser},
}

var sampleProducts = []models.Product{
	{
		Name:         "Airpods Wireless Bluetooth Headphones",
		Image:        "/images/airpods.jpg",
		Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly. High-quality AAC audio offers immersive listening experience. Built-in microphone allows you to take calls while working",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        89.99,
		CountInStock: 10,
	},
	{
		Name:         "iPhone 13 Pro 256GB Memory",
		Image:        "/images/phone.jpg",
		Description:  "Introducing the iPhone 13 Pro. A transformative triple-camera system that adds tons of capability without complexity. An unprecedented leap in battery life",
		Brand:        "Apple",
		Category:     "Electronics",
		Price:        599.99,
		CountInStock: 7,
	},
	{
		Name:         "Cannon EOS 80D DSLR Camera",
		Image:        "/images/camera.jpg",
		Description:  "Characterized by versatile imaging specs, the Canon EOS 80D further clarifies itself using a pair of robust focusing systems and an intuitive design",
		Brand:        "Cannon",
		Category:     "Electronics",
		Price:        929.99,
		CountInStock: 5,
	},
	{
		Name:         "Sony Playstation 5",
		Image:        "/images/playstation.jpg",
		Description:  "The ultimate home entertainment center starts with PlayStation. Whether you are into gaming, HD movies, television, music",
		Brand:        "Sony",
		Category:     "Electronics",
		Price:        399.99,
		CountInStock: 11,
	},
	{
		Name:         "Logitech G-Series Gaming Mouse",
		Image:        "/images/mouse.jpg",
		Description:  "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse. The six programmable buttons allow customization for a smooth playing experience",
		Brand:        "Logitech",
		Category:     "Electronics",
		Price:        49.99,
		CountInStock: 7,
	},
	{
		Name:         "Amazon Echo Dot 3rd Generation",
		Image:        "/images/alexa.jpg",
		Description:  "Meet Echo Dot - Our most popular smart speaker with a fabric design. It is our most compact smart speaker that fits perfectly into small space",
		Brand:        "Amazon",
		Category:     "Electronics",
		Price:        29.99,
		CountInStock: 0,
	},
}
