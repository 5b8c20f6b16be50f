package roster

const sampleRoster = `
teams:
  - id: platform
    name: Platform
    department: Engineering
workers:
  - id: mia
    name: Mia Manager
    email: Mia@Example.com
    password: password123
    role: manager
    manages: [platform]
  - id: ana
    name: Ana Lee
    email: ana@example.com
    password: password123
    team: platform
    skills: [Go, " go ", Postgres, ""]
  - id: ben
    name: Ben Ortiz
    email: ben@example.com
    team: platform
    skills: [React]
    active: false
items:
  - id: api
    title: Ship API
    priority: 3
    deadline: 2024-06-12
    assignee: ana
  - title: Legacy report
    priority: 2
    deadline: someday
    status: todo
    assignee: Ben Ortiz
leaves:
  - worker: Ana Lee
    type: Vacation
    start: 2024-06-11
    end: 2024-06-14
    status: approved
`
