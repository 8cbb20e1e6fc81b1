package control

// Func adjusts a freshly created socket before it is bound or connected.
type Func = func(fd int) error

func Append(oldFunc Func, newFunc Func) Func {
	if oldFunc == nil {
		return newFunc
	} else if newFunc == nil {
		return oldFunc
	}
	return func(fd int) error {
		if err := oldFunc(fd); err != nil {
			return err
		}
		return newFunc(fd)
	}
}

func Apply(fd int, funcs ...Func) error {
	for _, controlFunc := range funcs {
		if controlFunc == nil {
			continue
		}
		if err := controlFunc(fd); err != nil {
			return err
		}
	}
	return nil
}
