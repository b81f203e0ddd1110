package layers

import "sync"

// The stack registry lets refs revalidate their cached owning stack when a
// stack has been reassigned to a new backing document.
var stackRegistry = struct {
	mu     sync.RWMutex
	stacks map[string]*Stack
}{stacks: map[string]*Stack{}}

func registerStack(stack *Stack) {
	if stack == nil || stack.identifier == "" {
		return
	}
	stackRegistry.mu.Lock()
	stackRegistry.stacks[stack.identifier] = stack
	stackRegistry.mu.Unlock()
}

func unregisterStack(identifier string) {
	if identifier == "" {
		return
	}
	stackRegistry.mu.Lock()
	delete(stackRegistry.stacks, identifier)
	stackRegistry.mu.Unlock()
}

// StackByID returns the registered stack with the given identifier, or nil.
func StackByID(identifier string) *Stack {
	if identifier == "" {
		return nil
	}
	stackRegistry.mu.RLock()
	defer stackRegistry.mu.RUnlock()
	return stackRegistry.stacks[identifier]
}
