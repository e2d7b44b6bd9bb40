package luarules

import (
	"example.com/pennyfarthing/internal/cards"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	lua "github.com/yuin/gopher-lua"
)

// Lua sees 1-based pile and card positions; Go sees 0-based ones.

const (
	dealerType = "pennyfarthing.dealer"
	pileType   = "pennyfarthing.pile"
	cardType   = "pennyfarthing.card"
	zonesType  = "pennyfarthing.zones"
	tableType  = "pennyfarthing.table"
)

// newState opens the libraries a ruleset needs. math.random is removed so a
// deal depends on the game seed alone.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		math.RawSetString("random", lua.LNil)
		math.RawSetString("randomseed", lua.LNil)
	}
	return L
}

func (s *Script) bind() {
	L := s.L

	dealer := L.NewTypeMetatable(dealerType)
	L.SetField(dealer, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new_pile": s.dealerNewPile,
		"card":     s.dealerCard,
	}))

	pile := L.NewTypeMetatable(pileType)
	L.SetField(pile, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"fill":    s.pileFill,
		"shuffle": s.pileShuffle,
		"take":    s.pileTake,
		"add":     s.pileAdd,
		"push":    s.pilePush,
		"get":     s.pileGet,
		"top":     s.pileTop,
		"len":     s.pileLen,
		"cards":   s.pileCards,
	}))
	L.SetField(pile, "__len", L.NewFunction(s.pileLen))

	card := L.NewTypeMetatable(cardType)
	L.SetField(card, "__index", L.NewFunction(s.cardIndex))
	L.SetField(card, "__newindex", L.NewFunction(s.cardNewIndex))
	L.SetField(card, "__tostring", L.NewFunction(s.cardString))
	L.SetField(card, "__eq", L.NewFunction(s.cardEq))

	zones := L.NewTypeMetatable(zonesType)
	L.SetField(zones, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"stack":  s.zonesStack,
		"ladder": s.zonesLadder,
	}))

	table := L.NewTypeMetatable(tableType)
	L.SetField(table, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"take":  s.tableTake,
		"place": s.tablePlace,
		"peek":  s.tablePeek,
		"flip":  s.tableFlip,
		"won":   s.tableWon,
		"count": s.tableCount,
	}))
}

// fail raises err into Lua and remembers it so call can return it unchanged.
func (s *Script) fail(L *lua.LState, err error) int {
	s.err = err
	L.RaiseError("%s", err.Error())
	return 0
}

func (s *Script) wrap(v any, typ string) *lua.LUserData {
	ud := s.L.NewUserData()
	ud.Value = v
	s.L.SetMetatable(ud, s.L.GetTypeMetatable(typ))
	return ud
}

func (s *Script) dealerValue(d *cards.Dealer) lua.LValue { return s.wrap(d, dealerType) }

func (s *Script) zonesValue(m zone.Map) lua.LValue { return s.wrap(m, zonesType) }

func (s *Script) tableValue(t rules.Table) *lua.LUserData { return s.wrap(t, tableType) }

func (s *Script) pileValue(p *cards.Pile) lua.LValue { return s.wrap(p, pileType) }

func (s *Script) cardValue(c *cards.Card) lua.LValue {
	if c == nil {
		return lua.LNil
	}
	return s.wrap(c, cardType)
}

func (s *Script) draggedValue(d rules.Dragged) lua.LValue {
	tbl := s.L.NewTable()
	tbl.RawSetString("zone", lua.LString(d.Zone))
	tbl.RawSetString("pile", lua.LNumber(d.Pile+1))
	tbl.RawSetString("index", lua.LNumber(d.Index+1))
	list := s.L.NewTable()
	for _, c := range d.Cards {
		list.Append(s.cardValue(c))
	}
	tbl.RawSetString("cards", list)
	return tbl
}

func (s *Script) droppedValue(d rules.Dropped) lua.LValue {
	tbl := s.L.NewTable()
	if d.Zone != "" {
		tbl.RawSetString("zone", lua.LString(d.Zone))
		tbl.RawSetString("pile", lua.LNumber(d.Pile+1))
	}
	tbl.RawSetString("card", s.cardValue(d.Card))
	return tbl
}

func checkDealer(L *lua.LState, n int) *cards.Dealer {
	if d, ok := L.CheckUserData(n).Value.(*cards.Dealer); ok {
		return d
	}
	L.ArgError(n, "dealer expected")
	return nil
}

func checkPile(L *lua.LState, n int) *cards.Pile {
	if p, ok := L.CheckUserData(n).Value.(*cards.Pile); ok {
		return p
	}
	L.ArgError(n, "pile expected")
	return nil
}

func checkCard(L *lua.LState, n int) *cards.Card {
	if c, ok := L.CheckUserData(n).Value.(*cards.Card); ok {
		return c
	}
	L.ArgError(n, "card expected")
	return nil
}

func checkZones(L *lua.LState, n int) zone.Map {
	if m, ok := L.CheckUserData(n).Value.(zone.Map); ok {
		return m
	}
	L.ArgError(n, "zones expected")
	return nil
}

func checkTable(L *lua.LState, n int) rules.Table {
	if t, ok := L.CheckUserData(n).Value.(rules.Table); ok {
		return t
	}
	L.ArgError(n, "controller expected; it is only valid inside drop and setup")
	return nil
}

// position turns a 1-based Lua position into a Go index. Negative positions
// count from the top in both worlds.
func position(i int) int {
	if i > 0 {
		return i - 1
	}
	return i
}

// dealer

func (s *Script) dealerNewPile(L *lua.LState) int {
	L.Push(s.pileValue(checkDealer(L, 1).NewPile()))
	return 1
}

func (s *Script) dealerCard(L *lua.LState) int {
	d := checkDealer(L, 1)
	value := L.CheckInt(2)
	// an unparsed suit is empty and rejected by the dealer
	suit, _ := cards.ParseSuit(L.CheckString(3))
	c, err := d.Card(value, suit)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(s.cardValue(c))
	return 1
}

// pile

func (s *Script) pileFill(L *lua.LState) int {
	checkPile(L, 1).Fill()
	return 0
}

func (s *Script) pileShuffle(L *lua.LState) int {
	checkPile(L, 1).Shuffle()
	return 0
}

func (s *Script) pileTake(L *lua.LState) int {
	p := checkPile(L, 1)
	L.Push(s.pileValue(p.Take(L.OptInt(2, 1))))
	return 1
}

func (s *Script) pileAdd(L *lua.LState) int {
	checkPile(L, 1).Add(checkPile(L, 2))
	return 0
}

func (s *Script) pilePush(L *lua.LState) int {
	p := checkPile(L, 1)
	for i := 2; i <= L.GetTop(); i++ {
		p.Push(checkCard(L, i))
	}
	return 0
}

func (s *Script) pileGet(L *lua.LState) int {
	p := checkPile(L, 1)
	i := L.CheckInt(2)
	if i == 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(s.cardValue(p.Get(position(i))))
	return 1
}

func (s *Script) pileTop(L *lua.LState) int {
	L.Push(s.cardValue(checkPile(L, 1).Top()))
	return 1
}

func (s *Script) pileLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkPile(L, 1).Len()))
	return 1
}

func (s *Script) pileCards(L *lua.LState) int {
	list := L.NewTable()
	for _, c := range checkPile(L, 1).Cards() {
		list.Append(s.cardValue(c))
	}
	L.Push(list)
	return 1
}

// card

func (s *Script) cardIndex(L *lua.LState) int {
	c := checkCard(L, 1)
	switch L.CheckString(2) {
	case "value":
		L.Push(lua.LNumber(c.Value))
	case "suit":
		L.Push(lua.LString(c.Suit))
	case "name":
		L.Push(lua.LString(c.Name()))
	case "up":
		L.Push(lua.LBool(c.Up))
	case "red":
		L.Push(lua.LBool(c.Suit.Red()))
	case "joker":
		L.Push(lua.LBool(c.IsJoker()))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func (s *Script) cardNewIndex(L *lua.LState) int {
	c := checkCard(L, 1)
	if key := L.CheckString(2); key != "up" {
		L.ArgError(2, "card field "+key+" is read-only")
		return 0
	}
	if !s.dealing {
		L.RaiseError("cards can only be turned by hand while dealing; use ctl:flip")
		return 0
	}
	c.Up = L.CheckBool(3)
	return 0
}

func (s *Script) cardString(L *lua.LState) int {
	L.Push(lua.LString(checkCard(L, 1).Name()))
	return 1
}

func (s *Script) cardEq(L *lua.LState) int {
	L.Push(lua.LBool(checkCard(L, 1) == checkCard(L, 2)))
	return 1
}

// zones

func (s *Script) zonesStack(L *lua.LState) int {
	checkZones(L, 1).Stack(L.CheckString(2), checkPile(L, 3))
	return 0
}

func (s *Script) zonesLadder(L *lua.LState) int {
	m := checkZones(L, 1)
	name := L.CheckString(2)
	tbl := L.CheckTable(3)
	piles := make([]*cards.Pile, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		ud, ok := tbl.RawGetInt(i).(*lua.LUserData)
		if !ok {
			L.ArgError(3, "list of piles expected")
			return 0
		}
		p, ok := ud.Value.(*cards.Pile)
		if !ok {
			L.ArgError(3, "list of piles expected")
			return 0
		}
		piles = append(piles, p)
	}
	m.Ladder(name, piles...)
	return 0
}

// controller

func (s *Script) tableTake(L *lua.LState) int {
	t := checkTable(L, 1)
	p, err := t.TakeFrom(L.CheckString(2), L.OptInt(3, 1)-1, L.OptInt(4, 1))
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(s.pileValue(p))
	return 1
}

func (s *Script) tablePlace(L *lua.LState) int {
	t := checkTable(L, 1)
	if err := t.PlaceOn(checkPile(L, 2), L.CheckString(3), L.OptInt(4, 1)-1); err != nil {
		return s.fail(L, err)
	}
	return 0
}

func (s *Script) tablePeek(L *lua.LState) int {
	t := checkTable(L, 1)
	c, err := t.PeekAt(L.CheckString(2), L.OptInt(3, 1)-1)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(s.cardValue(c))
	return 1
}

func (s *Script) tableFlip(L *lua.LState) int {
	t := checkTable(L, 1)
	if err := t.Flip(L.CheckString(2), L.CheckInt(3)-1, L.CheckBool(4)); err != nil {
		return s.fail(L, err)
	}
	return 0
}

func (s *Script) tableWon(L *lua.LState) int {
	checkTable(L, 1).Won()
	return 0
}

func (s *Script) tableCount(L *lua.LState) int {
	t := checkTable(L, 1)
	n, err := t.Count(L.CheckString(2), L.OptInt(3, 1)-1)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

// toLayout reads {columns, rows, zones = {name = {col, row, width, height}},
// victory = {text, color, card}}. Shape errors surface from Layout.Validate
// when the ruleset is registered.
func toLayout(tbl *lua.LTable) rules.Layout {
	l := rules.Layout{
		Columns: intField(tbl, "columns"),
		Rows:    intField(tbl, "rows"),
		Zones:   map[string]rules.Rect{},
	}
	if zones, ok := tbl.RawGetString("zones").(*lua.LTable); ok {
		zones.ForEach(func(k, v lua.LValue) {
			r, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			l.Zones[lua.LVAsString(k)] = rules.Rect{
				Col:    intField(r, "col"),
				Row:    intField(r, "row"),
				Width:  intField(r, "width"),
				Height: intField(r, "height"),
			}
		})
	}
	if v, ok := tbl.RawGetString("victory").(*lua.LTable); ok {
		l.Victory = &rules.Victory{
			Text:  lua.LVAsString(v.RawGetString("text")),
			Color: lua.LVAsString(v.RawGetString("color")),
			Card:  lua.LVAsString(v.RawGetString("card")),
		}
	}
	return l
}

func intField(tbl *lua.LTable, key string) int {
	return int(lua.LVAsNumber(tbl.RawGetString(key)))
}
