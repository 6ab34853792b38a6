package store

type identityKind int

const (
	identityNone identityKind = iota
	identityUID
	identityLegacyID
)

// Identity is the reconciliation key of an incoming row. A row is matched by
// uid when the client sent one, by numeric id for rows created before uids
// existed, and never by content similarity.
type Identity struct {
	kind identityKind
	uid  string
	id   int64
}

func ByUID(uid string) Identity      { return Identity{kind: identityUID, uid: uid} }
func ByLegacyID(id int64) Identity   { return Identity{kind: identityLegacyID, id: id} }
func NoIdentity() Identity           { return Identity{} }
func (i Identity) IsNone() bool      { return i.kind == identityNone }

// identityOf derives the identity of an incoming row from its raw fields.
// A uid always wins over a numeric id.
func identityOf(uid string, id int64) Identity {
	if uid != "" {
		return ByUID(uid)
	}
	if id > 0 {
		return ByLegacyID(id)
	}
	return NoIdentity()
}

type exerciseIndex struct {
	byUID map[string]*Exercise
	byID  map[int64]*Exercise
}

func indexExercises(list []Exercise) exerciseIndex {
	ix := exerciseIndex{
		byUID: make(map[string]*Exercise, len(list)),
		byID:  make(map[int64]*Exercise, len(list)),
	}
	for i := range list {
		ex := &list[i]
		if ex.UID != "" {
			ix.byUID[ex.UID] = ex
		}
		ix.byID[ex.ID] = ex
	}
	return ix
}

// resolve returns the matched stored exercise, or nil for no match. The id
// fallback only applies to legacy rows that still lack a uid: a row that has
// one must be addressed by it.
func (ix exerciseIndex) resolve(id Identity) *Exercise {
	switch id.kind {
	case identityUID:
		return ix.byUID[id.uid]
	case identityLegacyID:
		if ex, ok := ix.byID[id.id]; ok && ex.UID == "" {
			return ex
		}
	}
	return nil
}

type setIndex struct {
	byUID map[string]*Set
	byID  map[int64]*Set
}

func indexSets(list []Set) setIndex {
	ix := setIndex{
		byUID: make(map[string]*Set, len(list)),
		byID:  make(map[int64]*Set, len(list)),
	}
	for i := range list {
		st := &list[i]
		if st.UID != "" {
			ix.byUID[st.UID] = st
		}
		ix.byID[st.ID] = st
	}
	return ix
}

func (ix setIndex) resolve(id Identity) *Set {
	switch id.kind {
	case identityUID:
		return ix.byUID[id.uid]
	case identityLegacyID:
		if st, ok := ix.byID[id.id]; ok && st.UID == "" {
			return st
		}
	}
	return nil
}
