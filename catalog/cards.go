package catalog

import "compliment-deck/model"

func text(id string, cat model.Category, rarity model.Rarity, intensity int, emoji, body string, tags ...string) model.Card {
	return model.NewText(id, cat, rarity, model.TextBody{Text: body, Intensity: intensity, Emoji: emoji, Tags: tags})
}

func builtinCards() []model.Card {
	return []model.Card{
		text("sweet-01", model.CategorySweet, model.RarityCommon, 1, "☀️", "You make ordinary days feel like weekends.", "everyday"),
		text("sweet-02", model.CategorySweet, model.RarityCommon, 1, "🌷", "Your laugh is my favorite sound.", "miss-me"),
		text("sweet-03", model.CategorySweet, model.RarityCommon, 2, "💌", "I would pick you in every timeline.", "miss-me"),
		text("sweet-04", model.CategorySweet, model.RarityRare, 2, "🌙", "Falling asleep next to you is the best part of my day.", "cant-sleep"),
		text("sweet-05", model.CategorySweet, model.RarityCommon, 1, "🍵", "You are warm like the first sip of tea in the morning."),
		text("sweet-06", model.CategorySweet, model.RarityLegendary, 3, "💖", "Loving you is the easiest thing I have ever done."),
		model.NewVoucher("sweet-v1", model.CategorySweet, model.RarityRare, "Breakfast in bed", "pancakes", "french toast", "a very fancy cereal"),
		model.NewPlaylist("sweet-p1", model.CategorySweet, model.RarityRare, "Golden Hour", "JVKE", "https://open.spotify.com/track/5odlY52u43F5BjByhxg7wg"),

		text("funny-01", model.CategoryFunny, model.RarityCommon, 1, "🐧", "If you were a vegetable you would be a cute-cumber.", "need-a-laugh"),
		text("funny-02", model.CategoryFunny, model.RarityCommon, 1, "🍕", "I love you more than pizza. Almost. Do not tell the pizza.", "need-a-laugh"),
		text("funny-03", model.CategoryFunny, model.RarityCommon, 2, "🦖", "You are roar-some and I mean that dinosaurly.", "sad"),
		text("funny-04", model.CategoryFunny, model.RarityRare, 2, "🧦", "You are the missing sock I finally found.", "miss-me"),
		text("funny-05", model.CategoryFunny, model.RarityCommon, 1, "🥔", "You are my sweet potato and I yam serious.", "proud"),
		model.NewVoucher("funny-v1", model.CategoryFunny, model.RarityCommon, "One free terrible joke", "pun", "knock-knock", "dad joke"),

		text("support-01", model.CategorySupportive, model.RarityCommon, 1, "🌱", "You are allowed to grow slowly.", "sad", "stressed"),
		text("support-02", model.CategorySupportive, model.RarityCommon, 2, "🫶", "I am proud of how hard you try, even on the heavy days.", "proud"),
		text("support-03", model.CategorySupportive, model.RarityCommon, 1, "🌊", "Breathe. This moment will pass and I will still be here.", "stressed"),
		text("support-04", model.CategorySupportive, model.RarityRare, 2, "🏔️", "You have survived every hard day so far. That record is perfect.", "sad"),
		text("support-05", model.CategorySupportive, model.RarityCommon, 1, "🕯️", "Rest is productive too.", "cant-sleep"),
		text("support-06", model.CategorySupportive, model.RarityLegendary, 3, "🏆", "Everything you built, you built with your own two hands.", "proud"),
		model.NewVoucher("support-v1", model.CategorySupportive, model.RarityCommon, "Worry-free hour", "walk together", "blanket fort", "phone-free cuddle"),
		model.NewPlaylist("support-p1", model.CategorySupportive, model.RarityCommon, "Here Comes the Sun", "The Beatles", "https://open.spotify.com/track/6dGnYIeXmHdcikdzNNDMm2"),

		text("spicy-01", model.CategorySpicyLite, model.RarityCommon, 2, "🔥", "You look dangerous in that hoodie."),
		text("spicy-02", model.CategorySpicyLite, model.RarityRare, 3, "😏", "I keep replaying the way you looked at me last night.", "miss-me"),
		text("spicy-03", model.CategorySpicyLite, model.RarityCommon, 2, "💋", "Come here. No reason. Just come here."),
		model.NewVoucher("spicy-v1", model.CategorySpicyLite, model.RarityRare, "Date night, your rules", "dinner out", "dancing in the kitchen", "movie marathon"),

		text("secret-01", model.CategorySecret, model.RarityLegendary, 3, "🗝️", "You found the secret deck. Of course you did, you find the best in everything."),
		text("secret-02", model.CategorySecret, model.RarityRare, 2, "🌌", "Somewhere in every future I imagine, you are there."),
		text("secret-03", model.CategorySecret, model.RarityRare, 2, "🎁", "The real surprise was you all along."),
		model.NewVoucher("secret-v1", model.CategorySecret, model.RarityLegendary, "A wish, no questions asked", "anything", "literally anything"),
	}
}
