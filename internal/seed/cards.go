package seed

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
)

const imageHost = "https://hebbkx1anhila5yf.public.blob.vercel-storage.com/"

// Cards is the starter catalog loaded by the migrator.
func Cards() []models.Card {
	return []models.Card{
		{ID: 1, Name: "Mercenary", Type: models.CardTypeCharacter, Rarity: models.RarityRare, Price: decimal.NewFromInt(1600), Image: imageHost + "Mercenary%20Faction%20Character%20Card-j3ondspBchFeA7kbABYeu8Titpj24Q.webp"},
		{ID: 2, Name: "Underground Hacker", Type: models.CardTypeCharacter, Rarity: models.RarityUncommon, Price: decimal.NewFromInt(32000), Image: imageHost + "Underground%20Faction%20Character%20Card%20(1)-99nkxVWpQfxRcthhPcUaY3n5NesDKB.webp"},
		{ID: 3, Name: "Corporate Android", Type: models.CardTypeCharacter, Rarity: models.RarityRare, Price: decimal.NewFromInt(700), Image: imageHost + "Corporate%20Faction%20Character%20Card-DdfvFQ10RbOu4RDSQFtE21tBMFcrVH.webp"},
		{ID: 4, Name: "Underground Rebel", Type: models.CardTypeCharacter, Rarity: models.RarityRare, Price: decimal.NewFromInt(95000), Image: imageHost + "Underground%20Faction%20Character%20Card-o8Gtsv3SGFKfGHQwJxSc5U3AhIFG2m.webp"},
		{ID: 5, Name: "AI Android", Type: models.CardTypeCharacter, Rarity: models.RarityLegendary, Price: decimal.NewFromInt(4000), Image: imageHost + "AI_Android%20Faction%20Card-fPvZBFMQcxUQeSt6bjq6Mj6KDgvzpF.webp"},
		{ID: 6, Name: "Bargenary Mercenary", Type: models.CardTypeCharacter, Rarity: models.RarityRare, Price: decimal.NewFromInt(28500), Image: imageHost + "Mercenary%20Faction%20Card%20(1)-vAoo6Her8EzWilWTouWeQUJTksPYXC.webp"},
		{ID: 7, Name: "Underground Scout", Type: models.CardTypeCharacter, Rarity: models.RarityUncommon, Price: decimal.NewFromInt(27000), Image: imageHost + "Cyberpunk%20Character%20Card%20(1)-FhprYcZw4FKJiyWzkqvXQVMCNsTkG1.webp"},
		{ID: 8, Name: "Elite Mercenary", Type: models.CardTypeCharacter, Rarity: models.RarityRare, Price: decimal.NewFromInt(31000), Image: imageHost + "Mercenary%20Faction%20Card-Ucmi6Nbf3pjWwPZdG73o8QeDn1mbnr.webp"},
		{ID: 9, Name: "Laser Cannon", Type: models.CardTypeWeapon, Rarity: models.RarityLegendary, Price: decimal.NewFromInt(400), Image: imageHost + "Cyberpunk%20Laser%20Cannon%20Card-UQz1n3JD0Xq72ktOheiqIpO35Xah8W.webp"},
		{ID: 10, Name: "Attack Drone", Type: models.CardTypeWeapon, Rarity: models.RarityRare, Price: decimal.NewFromInt(13000), Image: imageHost + "Cyberpunk%20Attack%20Drone%20Card-p51zbKhUgTRjixfbrsW2sPmR4ytQTz.webp"},
		{ID: 11, Name: "Cyber-Blade", Type: models.CardTypeWeapon, Rarity: models.RarityRare, Price: decimal.NewFromInt(9000), Image: imageHost + "Cyber-Blade%20Card%202024-10-24-7RInSEdB4DzO7P9QiIfBh3fl6BsV0U.webp"},
		{ID: 12, Name: "Plasma Sword", Type: models.CardTypeWeapon, Rarity: models.RarityLegendary, Price: decimal.NewFromInt(2100), Image: imageHost + "Cyberpunk%20Plasma%20Sword%20Card-hkn2IMuTFuRwwU7YWL2vmqox20Sz0k.webp"},
		{ID: 13, Name: "EMP Grenade", Type: models.CardTypeWeapon, Rarity: models.RarityUncommon, Price: decimal.NewFromInt(2000), Image: imageHost + "Cyberpunk%20EMP%20Grenade%20Card-8cysTndcp6vwHV0ky718Vx2TCduegZ.webp"},
		{ID: 14, Name: "EMP Device", Type: models.CardTypeWeapon, Rarity: models.RarityRare, Price: decimal.NewFromInt(3000), Image: imageHost + "Cyberpunk%20Weapon%20Card-bywuTxrEUkjkWcyHukVqRXV37j3Sc5.webp"},
		{ID: 15, Name: "Energy Shield", Type: models.CardTypeGadget, Rarity: models.RarityRare, Price: decimal.NewFromInt(5500), Image: imageHost + "Cyberpunk%20Energy%20Shield%20Card-P1FOd9pnE7ysZwdnpIuWMJY2sqTw93.webp"},
		{ID: 16, Name: "Cloaking Device", Type: models.CardTypeGadget, Rarity: models.RarityLegendary, Price: decimal.NewFromInt(4000), Image: imageHost + "Cyberpunk%20Cloaking%20Device%20Card-NN8dGXK8SSHLN8iXUYkxQXS9LtuSxN.webp"},
		{ID: 17, Name: "Strength Augmentation", Type: models.CardTypeGadget, Rarity: models.RarityRare, Price: decimal.NewFromInt(3000), Image: imageHost + "Cybernetic%20Strength%20Augmentation%20Card-Nm8xABUPrUtvkGhtkFwqreGqXf1ToE.webp"},
		{ID: 18, Name: "Hacking Tool", Type: models.CardTypeGadget, Rarity: models.RarityUncommon, Price: decimal.NewFromInt(900), Image: imageHost + "Cyberpunk%20Gadget%20Card-1gXltCcq6nSftqMnWOIaA14T7itgXP.webp"},
	}
}
