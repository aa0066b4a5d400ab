/*
Package ports defines the driven ports (interfaces) for the Sahayak engine.

These interfaces decouple the dialogue core from external implementations,
allowing the engine to work with various session backends and review queues.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading dialogue Sessions.
  - ReviewQueue: Receives cases that require a human decision before submission.
*/
package ports
