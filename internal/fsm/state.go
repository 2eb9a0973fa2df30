package fsm

// State is one behavior of a Machine.
//
// Enter and Exit are called exactly once per activation. Execute and
// FixedExecute are called by Machine.Update and Machine.FixedUpdate while
// the state is active.
type State interface {
	Enter()
	Execute()
	FixedExecute()
	Exit()
}

// Base implements State with no-ops. Embed it to override only the
// callbacks a state needs.
type Base struct{}

func (Base) Enter()        {}
func (Base) Execute()      {}
func (Base) FixedExecute() {}
func (Base) Exit()         {}

// Funcs adapts plain functions to State. Nil fields are no-ops.
type Funcs struct {
	OnEnter        func()
	OnExecute      func()
	OnFixedExecute func()
	OnExit         func()
}

func (f Funcs) Enter() {
	if f.OnEnter != nil {
		f.OnEnter()
	}
}

func (f Funcs) Execute() {
	if f.OnExecute != nil {
		f.OnExecute()
	}
}

func (f Funcs) FixedExecute() {
	if f.OnFixedExecute != nil {
		f.OnFixedExecute()
	}
}

func (f Funcs) Exit() {
	if f.OnExit != nil {
		f.OnExit()
	}
}
