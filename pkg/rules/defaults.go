package rules

// Default returns the built-in rule tables. They cover the common
// correction data every deployment wants; site-specific tables are merged
// on top via DefaultWith.
func Default() *Tables {
	b := NewBuilder()
	populate(b)
	t, err := b.Build()
	if err != nil {
		// The built-in data is validated by tests; an error here is a
		// programming mistake, not a runtime condition.
		panic(err)
	}
	return t
}

func populate(b *Builder) {
	// Word forms that simply do not exist; corrected unconditionally.
	for wrong, right := range map[string]string{
		"grænann":    "grænan",
		"pakkin":     "pakkinn",
		"hestin":     "hestinn",
		"kvenær":     "hvenær",
		"starfssemi": "starfsemi",
		"fjelagið":   "félagið",
		"leiðrjetta": "leiðrétta",
	} {
		b.AddUniqueError(wrong, right)
	}

	// Words that legitimately repeat ("það var mjög mjög gott").
	for _, w := range []string{"mjög", "ofsa", "býsna"} {
		b.AddAllowedMultiple(w)
	}

	// Erroneously merged forms that must be written separately.
	b.AddWrongCompound("afþví", "af", "því")
	b.AddWrongCompound("inná", "inn", "á")
	b.AddWrongCompound("uppí", "upp", "í")
	b.AddWrongCompound("útí", "út", "í")
	b.AddWrongCompound("framá", "fram", "á")
	b.AddWrongCompound("þarsem", "þar", "sem")

	// First parts that must not stand alone before these continuations.
	b.AddSplitCompound("all", "góður")
	b.AddSplitCompound("all", "stór")
	b.AddSplitCompound("lang", "bestur")
	b.AddSplitCompound("lang", "stærstur")
	b.AddSplitCompound("auka", "vinna")
	b.AddSplitCompound("marg", "falt")

	// Multiword error phrases.
	b.AddPhrase("að mestu leiti", "LEYTI", "að mestu leyti")
	b.AddPhrase("að því leiti", "LEYTI", "að því leyti")
	b.AddPhrase("að öllu leiti", "LEYTI", "að öllu leyti")
	b.AddPhrase("annað hvort er", "ANNADHVORT", "annaðhvort er")

	// Wrong abbreviation forms.
	for wrong, right := range map[string]string{
		"amk.":    "a.m.k.",
		"a.m.k":   "a.m.k.",
		"etv.":    "e.t.v.",
		"ofl.":    "o.fl.",
		"osfrv.":  "o.s.frv.",
		"oþh.":    "o.þ.h.",
		"t.d":     "t.d.",
		"uþb.":    "u.þ.b.",
		"þeas.":   "þ.e.a.s.",
		"mtt.":    "m.t.t.",
		"ca":      "ca.",
		"n.k.":    "nk.",
	} {
		b.AddAbbreviation(wrong, right)
	}

	// Word forms listed in the casing they wrongly appear in; the
	// reverse casing is the correct one.
	for _, w := range []string{
		"íslendingur", "íslendingar", "finni", "finnar",
		"Danskur", "Amerískur",
	} {
		b.AddCapitalizationError(w)
	}

	for _, a := range []string{"RÚV", "HÍ", "ESB", "BHM"} {
		b.AddAcronym(a)
	}

	for _, m := range []string{
		"janúar", "febrúar", "mars", "apríl", "maí", "júní",
		"júlí", "ágúst", "september", "október", "nóvember", "desember",
	} {
		b.AddMonth(m)
	}

	b.AddTaboo(TabooEntry{
		Word:         "fábjáni",
		Category:     "kk",
		Replacements: []string{"einfeldningur"},
		Detail:       "Óheppilegt eða óviðurkvæmilegt orð í formlegum texta.",
	})
	b.AddTaboo(TabooEntry{
		Word:         "helvítis",
		Category:     "lo",
		Replacements: []string{"afar", "mjög"},
		Detail:       "Blótsyrði eiga ekki heima í formlegum texta.",
	})

	b.AddToneOfVoice(TabooEntry{
		Word:         "undirritaður",
		Category:     "kk",
		Replacements: []string{"ég"},
		Detail:       "Í nútímamáli er eðlilegra að segja 'ég'.",
	})
	b.AddToneOfVoice(TabooEntry{
		Word:         "téður",
		Category:     "lo",
		Replacements: []string{"umræddur"},
		Detail:       "Stofnanamál; léttara orðalag fer betur.",
	})
}
